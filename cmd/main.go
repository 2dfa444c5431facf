package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hvac/internal/config"
	"hvac/internal/handlers"
	"hvac/internal/logger"
	"hvac/internal/metrics"
	"hvac/internal/notify"
	"hvac/internal/repository"
	"hvac/internal/repository/db"
	"hvac/internal/server"
	"hvac/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: configs/config.yml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer closeDB(conn, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pub := openPublishers(ctx, cfg, log)
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warnw("failed to close publishers", "err", err)
		}
	}()

	m := metrics.New()
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, service.Deps{
		HVAC: cfg.HVAC,
		Auth: service.AuthConfig{
			SigningKey: cfg.Auth.SigningKey,
			TokenTTL:   cfg.Auth.TokenTTL,
		},
		Publisher: pub,
		Metrics:   m,
		Logger:    log,
	})

	if _, err := services.Control.Boot(ctx); err != nil {
		log.Fatalw("failed to boot controller", "err", err)
	}

	if cfg.Clock.Auto {
		go services.Clock.Run(ctx, cfg.Clock.Tick)
	} else {
		log.Infow("clock_manual", "hint", "POST /api/v1/hvac/tick to advance")
	}

	srv := &server.Server{}
	apiHandler := handlers.NewHandler(services, m, log)
	go func() {
		log.Infow("http_listen", "port", cfg.Port)
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
}

// openPublishers builds the state fan-out. A sink that fails to connect is
// logged and skipped.
func openPublishers(ctx context.Context, cfg config.Config, log *logger.Logger) notify.Multi {
	var pubs notify.Multi

	if cfg.MQTT.Broker != "" {
		p, err := notify.NewMQTTPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
		if err != nil {
			log.Errorw("mqtt_unavailable", "broker", cfg.MQTT.Broker, "err", err)
		} else {
			log.Infow("mqtt_enabled", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
			pubs = append(pubs, p)
		}
	}

	if cfg.Redis.Addr != "" {
		p, err := notify.NewRedisPublisher(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Key, cfg.Redis.Channel)
		if err != nil {
			log.Errorw("redis_unavailable", "addr", cfg.Redis.Addr, "err", err)
		} else {
			log.Infow("redis_enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
			pubs = append(pubs, p)
		}
	}

	return pubs
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

// waitForShutdown blocks until SIGINT or SIGTERM, then stops the clock and
// drains the HTTP server.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
