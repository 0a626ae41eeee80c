package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site",
	Long: `Serve the site until interrupted. With --watch and a content_dir, the
catalog is reloaded whenever a file under it changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := folio.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("watch") {
			cfg.WatchContent = serveWatch
		}

		app := folio.New(cfg, folio.DefaultViews())
		app.Echo.HideBanner = true
		if err := app.Setup(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if app.Config.WatchContent {
			go func() {
				if err := app.WatchContent(ctx); err != nil && !errors.Is(err, context.Canceled) {
					app.Echo.Logger.Errorf("folio: watch content: %v", err)
				}
			}()
		}

		errc := make(chan error, 1)
		go func() { errc <- app.Start() }()

		select {
		case err := <-errc:
			app.Close()
			return err
		case <-ctx.Done():
		}

		app.Echo.Logger.Info("folio: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload content_dir on change")
	rootCmd.AddCommand(serveCmd)
}
