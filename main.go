package main

import (
	"arma3-server-manager/cmd"
	"arma3-server-manager/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// The logger is pointed at LOG_FILE once the command has loaded its configuration.
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
