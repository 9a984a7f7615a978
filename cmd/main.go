package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/sosika-app/sosika-backend/config"
	"github.com/sosika-app/sosika-backend/database"
	"github.com/sosika-app/sosika-backend/notifications"
	"github.com/sosika-app/sosika-backend/realtime"
	"github.com/sosika-app/sosika-backend/server"
)

const shutdownTimeOut = 10 * time.Second

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	config.Init()

	if err := database.ConnectAndMigrate(); err != nil {
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("migration is successful")

	store, err := notifications.NewTokenStore()
	if err != nil {
		logrus.Panicf("failed to connect to redis, error: %v", err)
	}
	notifier, err := notifications.New(store)
	if err != nil {
		logrus.Panicf("failed to initialize notifications, error: %v", err)
	}

	hub := realtime.NewHub()

	svr := server.SetupRoutes(hub, notifier, store)
	go func() {
		logrus.Infof("listening on :%s", config.Port)
		if err := svr.Run(":" + config.Port); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Panic("server stopped unexpectedly")
		}
	}()

	<-done

	logrus.Info("shutting down...")
	var errs error
	if err := svr.Shutdown(shutdownTimeOut); err != nil {
		errs = multierror.Append(errs, err)
	}
	hub.Close()
	if err := store.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := database.ShutdownDatabase(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		logrus.WithError(errs).Error("shutdown finished with errors")
	} else {
		logrus.Info("system is shut ..zzz")
	}
}
