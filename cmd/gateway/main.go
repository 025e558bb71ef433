package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kushal45/OMS-sub001/internal/auth"
	"github.com/kushal45/OMS-sub001/internal/auth/jwt"
	"github.com/kushal45/OMS-sub001/internal/common/config"
	"github.com/kushal45/OMS-sub001/internal/gateway"
	"github.com/kushal45/OMS-sub001/internal/notify"
	"github.com/kushal45/OMS-sub001/internal/realtime"
	"github.com/kushal45/OMS-sub001/internal/realtime/notifier"
	"github.com/kushal45/OMS-sub001/pkg/logger"
	"github.com/kushal45/OMS-sub001/pkg/metrics"
	"github.com/kushal45/OMS-sub001/pkg/trace"
	"github.com/kushal45/OMS-sub001/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of the gateway",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("oms-gateway version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "gateway",
		Short: "OMS edge gateway",
		Long:  `Edge gateway for the order-management platform: authenticating reverse proxy plus realtime event hub`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "gateway.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}

	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = lg.Sync()
	}()
	lg.Info("configuration loaded",
		zap.String("path", cfgPath),
		zap.String("version", version.Get()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Tracing.Enabled {
		shutdown, err := trace.InitTracing(ctx, cfg.Tracing, lg)
		if err != nil {
			lg.Fatal("failed to initialize tracing", zap.Error(err))
		}
		defer func() {
			shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
			defer c()
			_ = shutdown(shutdownCtx)
		}()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics)
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.Auth.SecretKey,
		Duration:  cfg.Auth.TokenDuration,
	})
	if err != nil {
		lg.Fatal("failed to initialize token service", zap.Error(err))
	}

	verifier := auth.NewVerifier(lg, cfg.Auth.VerifyURL, cfg.Auth.VerifyTimeout)
	httpAuthn := auth.NewHTTPAuthenticator(lg, verifier, &cfg.Auth)
	sessionAuthn := auth.NewSessionAuthenticator(lg, jwtService)

	n, err := notifier.New(lg, cfg.Notifier)
	if err != nil {
		lg.Fatal("failed to initialize notifier", zap.Error(err))
	}
	if n != nil {
		defer func() {
			_ = n.Close()
		}()
	}

	registry := realtime.NewRegistry(lg)
	hub := realtime.NewHub(lg, registry, n, m)
	if err := hub.Start(ctx); err != nil {
		lg.Fatal("failed to start hub", zap.Error(err))
	}
	ws := realtime.NewWSHandler(lg, hub, sessionAuthn, cfg.Realtime, cfg.CORS, m)

	dispatcher := notify.NewDispatcher(lg, hub)
	table := gateway.LoadRouteTable(lg, cfg.Proxy.RoutesPath)

	srv := gateway.NewServer(lg, cfg, httpAuthn, hub, ws, dispatcher, table, m)

	go func() {
		if err := srv.Run(); err != nil {
			lg.Fatal("gateway stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("failed to shutdown gateway", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
