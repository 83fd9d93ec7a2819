package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"arma3-server-manager/devproxy"
	"arma3-server-manager/logger"
)

// serveCmd runs the local development proxy in front of the backend.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Proxy /api to the backend for local front-end development",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := openLocal(configDir)
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.DevProxyAddr
		}

		srv, err := devproxy.New(addr, cfg.APITarget)
		if err != nil {
			logger.Log.Fatalw("Invalid proxy configuration", zap.Error(err))
		}
		fmt.Printf("Proxying http://%s/api to %s (Ctrl+C to stop)\n", addr, cfg.APITarget)
		if err := srv.ListenAndServe(cmd.Context()); err != nil {
			logger.Log.Fatalw("Proxy stopped", zap.Error(err))
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default DEV_PROXY_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
