package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"BillSentinel/internal/budget"
	"BillSentinel/internal/config"
	"BillSentinel/internal/notifier"
	"BillSentinel/internal/scheduler"
	"BillSentinel/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] BillSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init obligation store. The config always supplies a database path
	// (":memory:" works for a throwaway run); the in-memory store is only
	// a fallback when SQLite cannot be opened.
	var st store.Store
	if ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath); err != nil {
		log.Printf("[WARN] init sqlite store failed, using in-memory store: %v", err)
		st = store.NewMemoryStore()
	} else {
		st = ss
	}
	defer st.Close()

	// Init budget manager
	bm, err := budget.NewManager(cfg.Budget.StateFile, cfg.MonthlyBudget(), time.Now())
	if err != nil {
		log.Fatalf("[FATAL] init budget manager: %v", err)
	}

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, st, bm, tn, cfg.EnginePolicy(), cfg.CategoryTable(), cfg.Policy.RescheduleDays)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.OverdueCron, cfg.Schedule.MonthlyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	}

	log.Println("[INFO] BillSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] BillSentinel stopped")
}
