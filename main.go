package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "timesync-backend/cmd/api"
	"timesync-backend/internal/app"
	authUsecase "timesync-backend/internal/auth/usecase"
	taskUsecase "timesync-backend/internal/task/usecase"
	"timesync-backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize backing services:", err)
	}
	defer a.Close()

	// Task events from Pub/Sub (no-op when applied in process)
	a.StartSubscriber(ctx)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(a.Identity, a.Profiles, a.Tokens, a.FCMTokens, a.Store, a.Sessions, cfg)
	settings := api.NewRuntimeSettings(cfg.OllamaBaseURL, cfg.OllamaModel)
	schedule := api.NewScheduleService(cfg, settings)
	taskUsecaseInstance := taskUsecase.NewTaskUsecase(a.Store, a.Profiles, a.Publisher, schedule, a.Sessions, cfg)

	// Reminder dispatcher
	reminders := a.NewReminderScheduler()
	if err := reminders.Start(); err != nil {
		log.Printf("[ERROR] Failed to start reminder scheduler: %v", err)
	}
	defer reminders.Stop()

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, taskUsecaseInstance, settings, cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		errCh <- handler.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		log.Printf("Server stopped: %v", err)
	case <-ctx.Done():
		log.Println("Shutting down")
	}
}
