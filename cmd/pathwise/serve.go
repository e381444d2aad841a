package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rahul/pathwise/internal/gateway"
	"github.com/rahul/pathwise/internal/observability"
	"github.com/rahul/pathwise/internal/reminders"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task API and the enabled chat gateways",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			observability.PrintBanner()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			if len(a.cfg.Auth.Tokens) == 0 {
				log.Println("Warning: no API tokens configured, every API request will be rejected")
			}

			gin.SetMode(gin.ReleaseMode)
			api := gateway.NewHTTPServer(a.tracker, gateway.TokenAuthenticator(a.cfg.Auth.Tokens), a.policy, a.logger)
			api.Listen(a.cfg.Server.Addr)
			gateways := []gateway.Gateway{api}

			if tgCfg, ok := a.cfg.GetTelegramConfig(); ok {
				tg, err := gateway.NewTelegramGateway(tgCfg.Token, a.tracker)
				if err != nil {
					return err
				}
				gateways = append(gateways, tg)

				scheduler := reminders.NewScheduler(a.goals, a.tracker, tg, a.cfg.ReminderInterval())
				scheduler.Reachable = func(owner string) bool {
					_, ok := gateway.ChatID(owner)
					return ok
				}
				go scheduler.Start(ctx)
			}

			go func() {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						observability.Heartbeat()
						a.logger.LogHeartbeat()
					}
				}
			}()

			// Start gateways in goroutines so we can wait for context in the main loop
			for _, gw := range gateways {
				go func(gw gateway.Gateway) {
					if err := gw.Start(); err != nil {
						log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
						stop() // stop caller if gateway dies
					}
				}(gw)
			}
			observability.PrintReady(a.cfg.Server.Addr)

			// Wait for shutdown signal
			<-ctx.Done()

			for _, gw := range gateways {
				if err := gw.Stop(); err != nil {
					log.Printf("Error stopping gateway: %v", err)
				}
			}
			log.Println("\033[95m[ EXIT ] PATHWISE STOPPED. GOODBYE.\033[0m")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}
