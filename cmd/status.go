package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"arma3-server-manager/arma"
	"arma3-server-manager/format"
	"arma3-server-manager/store"
	"arma3-server-manager/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show backend health, the active server and a summary of mods and collections",
	Run: func(cmd *cobra.Command, args []string) {
		a := bootstrap(configDir)
		ctx, cancel := withTimeout(cmd.Context(), a.cfg.RequestTimeout())
		defer cancel()

		var (
			health string
			active *arma.ServerConfig
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			health, err = a.client.Health(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			active, err = a.server.Status(gctx)
			if errors.Is(err, store.ErrNoActiveServer) {
				return nil
			}
			return err
		})
		g.Go(func() error { return a.mods.Refresh(gctx) })
		g.Go(func() error { return a.collections.Refresh(gctx) })
		g.Go(func() error { return a.schedules.Refresh(gctx) })

		var err error
		spin("Contacting backend...", func() { err = g.Wait() })
		if err != nil {
			fail("Status", err)
		}

		fmt.Println(ui.Title.Render("ARMA 3 Server Manager"))
		fmt.Printf("Backend:    %s (%s)\n", ui.SuccessText.Render(health), a.cfg.APITarget)
		if active != nil {
			fmt.Printf("Server:     %s (%s)\n", active.Name, active.ServerName)
		} else {
			fmt.Printf("Server:     %s\n", ui.WarningText.Render("no active server"))
		}
		if col, ok := a.collections.Active(); ok {
			fmt.Printf("Collection: %s (%d mods)\n", col.Value.Name, col.Value.ModCount)
		} else {
			fmt.Printf("Collection: %s\n", ui.MutedText.Render("none"))
		}

		mods := a.mods.Values()
		outdated := 0
		for _, mod := range mods {
			if format.ModStatus(mod).Type == format.ModUpdateAvailable {
				outdated++
			}
		}
		fmt.Printf("Mods:       %d subscribed, %d with updates\n", len(mods), outdated)

		enabled := 0
		for _, s := range a.schedules.Values() {
			if s.Enabled {
				enabled++
			}
		}
		fmt.Printf("Schedules:  %d/%d enabled\n", enabled, len(a.schedules.Values()))
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
