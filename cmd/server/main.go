// @title                       Building Energy Management API
// @version                     1.0
// @description                 Price-signal driven HVAC and lighting control for buildings.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "building_energy/docs"
	"building_energy/internal/config"
	"building_energy/internal/handlers"
	"building_energy/internal/logger"
	"building_energy/internal/repository"
	"building_energy/internal/repository/db"
	"building_energy/internal/server"
	"building_energy/internal/service"
	"building_energy/internal/signals"

	"github.com/fsnotify/fsnotify"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logger.Get(logger.InfoLevel)

	v := config.NewViper()
	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	log.SetLevel(cfg.LogLevel)
	config.Watch(v, func(level string, ev fsnotify.Event) {
		log.SetLevel(level)
		log.Infow("config reloaded", "file", ev.Name, "log_level", log.LevelName())
	})

	conn, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DBPath)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Options{
		SigningKey:   cfg.Auth.SigningKey,
		TokenTTL:     cfg.Auth.TokenTTL,
		UsageLimitKW: cfg.Simulator.UsageLimitKW,
	}, log)
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Simulator.Enabled {
		log.Infow("demand simulator enabled", "tick", cfg.Simulator.Tick, "usage_limit_kw", cfg.Simulator.UsageLimitKW)
		go services.Simulator.Run(ctx, cfg.Simulator.Tick)
	}

	var bridge *signals.Bridge
	if cfg.MQTT.Enabled {
		bridge, err = signals.Dial(ctx, cfg.MQTT, services.Buildings, log)
		if err != nil {
			log.Fatalw("failed to connect mqtt", "err", err)
		}
	}

	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, bridge, log)
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, bridge *signals.Bridge, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	cancel()
	if bridge != nil {
		bridge.Stop()
	}

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
