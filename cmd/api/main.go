package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/api"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/config"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/dialog"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/http/handlers"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/messaging"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/observability/metrics"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/promo"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/reminder"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/schedule"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/sheet"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/storage"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/textgen"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting whatsapp reminder bot", "env", cfg.Env, "port", cfg.Port)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	hours, err := schedule.ParseBusinessHours(cfg.BusinessOpen, cfg.BusinessClose, cfg.ClosedWeekdays)
	if err != nil {
		logger.Error("invalid business hours", "error", err)
		os.Exit(1)
	}
	countdownAt, err := schedule.ParseTimeOfDay(cfg.CountdownAt)
	if err != nil {
		logger.Error("invalid countdown trigger time", "value", cfg.CountdownAt, "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("cannot create data dir", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Registry and shared counters.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	botMetrics := metrics.New(registry)

	// Appointment store backed by the xlsx spreadsheet.
	codec := sheet.NewCodec(filepath.Join(cfg.DataDir, cfg.AppointmentsFile), loc, logger.Component("sheet"))
	store := appointments.NewStore(codec, logger.Component("appointments"))
	if existing, err := codec.Load(); err != nil {
		logger.Error("cannot load appointment spreadsheet", "error", err)
		os.Exit(1)
	} else if len(existing) > 0 {
		if _, err := store.ImportMerge(context.Background(), existing, nil); err != nil {
			logger.Error("cannot seed appointment store", "error", err)
		}
		logger.Info("loaded appointments from spreadsheet", "count", len(existing))
	}

	statusStore, err := storage.NewStatusStore(filepath.Join(cfg.DataDir, cfg.StatusFile))
	if err != nil {
		logger.Error("cannot open status store", "error", err)
		os.Exit(1)
	}
	seenStore, err := storage.NewSeenStore(filepath.Join(cfg.DataDir, cfg.SeenPhonesFile))
	if err != nil {
		logger.Error("cannot open seen-phones store", "error", err)
		os.Exit(1)
	}

	avail := schedule.NewEngine(hours, store, cfg.SlotDuration, loc, time.Now)

	// Dialogue state: redis when configured, in-process map otherwise.
	var states dialog.StateStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis unreachable, falling back to in-memory dialogue state", "error", err)
			states = dialog.NewMemoryStateStore(cfg.DialogStateTTL)
		} else {
			states = dialog.NewRedisStateStore(client, cfg.DialogStateTTL, nil)
			logger.Info("dialogue state in redis", "addr", cfg.RedisAddr)
		}
	} else {
		states = dialog.NewMemoryStateStore(cfg.DialogStateTTL)
	}

	sender := messaging.NewCloudAPISender(cfg.WhatsAppToken, cfg.WhatsAppPhoneID, logger.Component("messaging"))

	var gen textgen.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := textgen.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("gemini unavailable, using template messages", "error", err)
		} else {
			defer gemini.Close()
			gen = gemini
			logger.Info("text generation enabled", "model", cfg.GeminiModel)
		}
	}

	engine := dialog.NewEngine(store, avail, states, sender, logger.Component("dialog")).
		WithGenerator(gen).
		WithMetrics(botMetrics).
		WithReplyDelay(cfg.ReplyDelay).
		WithHorizonDays(cfg.HorizonDays)

	notifier := promo.NewNotifier(statusStore, sender, logger.Component("promo")).
		WithGenerator(gen).
		WithMetrics(botMetrics)

	scheduler := reminder.NewScheduler(store, sender, loc, logger.Component("reminder")).
		WithGenerator(gen).
		WithMetrics(botMetrics).
		WithTick(cfg.ReminderTick).
		WithCountdownAt(countdownAt).
		WithCountdownWindow(cfg.CountdownWindow).
		WithNearTermLead(cfg.NearTermLead)

	runCtx, stopReminders := context.WithCancel(context.Background())
	go scheduler.Run(runCtx)

	admin := handlers.NewAdmin(store, statusStore, seenStore, notifier, botMetrics, loc, logger.Component("handlers"))
	webhook := handlers.NewWebhook(engine, cfg.WhatsAppVerifyToken, logger.Component("handlers"))

	r := api.NewRouter(api.Deps{
		Admin:   admin,
		Webhook: webhook,
		ConnectionProbe: func() bool {
			return cfg.WhatsAppToken != "" && cfg.WhatsAppPhoneID != ""
		},
		Registry: registry,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	stopReminders()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
