package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"

	"github.com/lahn92/AquaTimer/internal/announce"
	"github.com/lahn92/AquaTimer/internal/driver"
	"github.com/lahn92/AquaTimer/internal/handlers"
	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/repository"
	"github.com/lahn92/AquaTimer/internal/repository/db"
	"github.com/lahn92/AquaTimer/internal/server"
	"github.com/lahn92/AquaTimer/internal/service"
)

// @title        AquaTimer API
// @version      1.0
// @description  Daily brightness scheduler for a PWM-dimmed aquarium light.
// @BasePath     /
func main() {
	// load config.yml first so the logger level comes from it
	if err := loadConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "error reading config:", err)
		os.Exit(1)
	}

	log := logger.Get(viper.GetString("log.level"))

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// actuator output
	out, err := openOutput(log)
	if err != nil {
		log.Fatalw("failed to init pwm output", "err", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			log.Errorw("failed to close pwm output", "err", cerr)
		}
	}()

	// optional MQTT status announcer
	ann := openAnnouncer(log)
	defer ann.Close()

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(service.Deps{
		Repos:  repos,
		Output: out,
		Source: &service.NTPSource{Servers: viper.GetStringSlice("ntp.servers")},
		Ann:    ann,
		Log:    log,

		FadeStep:      viper.GetFloat64("loop.fade_step"),
		SyncInterval:  viper.GetDuration("ntp.sync_interval"),
		RetryInterval: viper.GetDuration("ntp.retry_interval"),
		AnnounceEvery: viper.GetInt("mqtt.every"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// restore persisted schedule and settings, then start the control loop
	services.LoadState(ctx)
	go services.ControlLoop.Run(ctx, viper.GetDuration("loop.tick"))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("http.port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.SetDefault("http.port", "8080")
	viper.SetDefault("log.level", logger.InfoLevel)
	viper.SetDefault("db.path", "aquatimer.db")
	viper.SetDefault("loop.tick", time.Second)
	viper.SetDefault("loop.fade_step", service.DefaultFadeStep)
	viper.SetDefault("pwm.driver", "mock")
	viper.SetDefault("pwm.frequency_hz", 5000)
	viper.SetDefault("pwm.resolution_bits", 12)
	viper.SetDefault("ntp.servers", []string{"pool.ntp.org", "time.nist.gov"})
	viper.SetDefault("ntp.sync_interval", time.Hour)
	viper.SetDefault("ntp.retry_interval", time.Minute)
	viper.SetDefault("mqtt.enabled", false)
	viper.SetDefault("mqtt.every", 5)

	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	if err := viper.ReadInConfig(); err != nil {
		// missing config file is fine, defaults cover everything
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	log.Infow("opening store", "path", dbPath)
	return db.InitDB(dbPath)
}

// openOutput builds the PWM output selected in config: "sysfs" drives real
// hardware, "mock" keeps everything in memory for development.
func openOutput(log *logger.Logger) (driver.Output, error) {
	bits := viper.GetInt("pwm.resolution_bits")
	switch name := viper.GetString("pwm.driver"); name {
	case "sysfs":
		return driver.NewSysfs(
			viper.GetInt("pwm.chip"),
			viper.GetInt("pwm.channel"),
			viper.GetInt("pwm.frequency_hz"),
			bits,
		)
	case "mock":
		log.Infow("using in-memory pwm output")
		return driver.NewMem(bits), nil
	default:
		return nil, fmt.Errorf("unknown pwm driver %q", name)
	}
}

// openAnnouncer connects the MQTT status publisher when enabled; a broker
// that is down at boot only costs the announcements, never the light.
func openAnnouncer(log *logger.Logger) announce.Announcer {
	if !viper.GetBool("mqtt.enabled") {
		return announce.Nop{}
	}
	ann, err := announce.NewMQTT(announce.Config{
		Broker:   viper.GetString("mqtt.broker"),
		ClientID: viper.GetString("mqtt.client_id"),
		Username: viper.GetString("mqtt.username"),
		Password: viper.GetString("mqtt.password"),
		Topic:    viper.GetString("mqtt.topic"),
	})
	if err != nil {
		log.Warnw("mqtt announcer disabled", "err", err)
		return announce.Nop{}
	}
	return ann
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the control loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
