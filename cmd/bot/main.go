package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twdlabs/pagebot/internal/bot"
	"github.com/twdlabs/pagebot/internal/setup"
	"github.com/twdlabs/pagebot/internal/web"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long graceful shutdown may take.
const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "pagebot",
		Usage: "Discord bot that lists its servers through a paginated menu",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file (overrides the search paths)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// Initialize application with required dependencies
			app, err := setup.InitializeApp(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup()

			discordBot, err := bot.New(app.Config, app.Logger)
			if err != nil {
				return fmt.Errorf("failed to create bot: %w", err)
			}

			// The web server runs alongside the gateway connection when enabled
			var webServer *web.Server

			if app.Config.Web.Enabled {
				webServer, err = web.NewServer(app.Config.Web.Addr, app.Logger)
				if err != nil {
					return fmt.Errorf("failed to create web server: %w", err)
				}

				go func() {
					if err := webServer.Start(); err != nil {
						app.Logger.Error("Web server stopped", zap.Error(err))
					}
				}()
			}

			if err := discordBot.Start(ctx); err != nil {
				return fmt.Errorf("failed to start bot: %w", err)
			}

			log.Println("Bot has been started. Waiting for interrupt signal to gracefully shutdown...")

			// Wait for interrupt signal to gracefully shutdown the bot
			sc := make(chan os.Signal, 1)
			signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

			select {
			case <-sc:
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			discordBot.Close(shutdownCtx)

			if webServer != nil {
				if err := webServer.Shutdown(shutdownCtx); err != nil {
					app.Logger.Error("Failed to shut down web server", zap.Error(err))
				}
			}

			return nil
		},
	}

	return app.Run(context.Background(), os.Args)
}
