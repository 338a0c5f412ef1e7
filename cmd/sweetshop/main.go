package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jogardn/sweetshop/internal/api"
	"github.com/jogardn/sweetshop/internal/store"
	"github.com/jogardn/sweetshop/internal/websocket"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logLevel())

	databaseURL := os.Getenv("DATABASE_URL")
	databaseName := getEnv("DATABASE_NAME", "sweetshop")
	port := getEnv("PORT", "8000")

	// A missing or unreachable database keeps the process up: the data
	// endpoints fail per request and /test reports the state.
	db := store.Connect(context.Background(), databaseURL, databaseName, logger)
	defer db.Close(context.Background())

	hub := websocket.NewHub(logger)
	go hub.Run()

	handler := api.NewHandler(db, logger)
	handler.SetEventHub(hub)

	router := mux.NewRouter()
	handler.Register(router)
	router.HandleFunc("/ws", hub.HandleWebSocket)

	router.Use(api.CORSMiddleware())
	router.Use(api.RequestIDMiddleware())
	router.Use(api.LoggingMiddleware(logger))
	router.Use(api.RecoveryMiddleware(logger))

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", port).Info("Starting sweet shop backend")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

func logLevel() logrus.Level {
	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
