package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"BillSentinel/internal/engine"
	"BillSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Budget struct {
		Monthly   string `yaml:"monthly"` // decimal string, e.g. "30000"
		StateFile string `yaml:"state_file"`
	} `yaml:"budget"`
	Schedule struct {
		DailyCron   string `yaml:"daily_cron"`
		OverdueCron string `yaml:"overdue_cron"`
		MonthlyCron string `yaml:"monthly_cron"`
	} `yaml:"schedule"`
	// Policy weights are pointers so a configured zero (e.g. disabling the
	// late-fee bonus) is distinguishable from "unset, use the default".
	Policy struct {
		OverduePerDay       *float64 `yaml:"overdue_per_day"`
		UpcomingPerDay      *float64 `yaml:"upcoming_per_day"`
		UpcomingHorizonDays *int     `yaml:"upcoming_horizon_days"`
		AmountUnit          *float64 `yaml:"amount_unit"`
		LateFeeBonus        *float64 `yaml:"late_fee_bonus"`
		GraceDays           *int     `yaml:"grace_days"`
		RescheduleDays      int      `yaml:"reschedule_days"`
	} `yaml:"policy"`
	Categories []struct {
		Name    string `yaml:"name"`
		LateFee bool   `yaml:"late_fee"`
	} `yaml:"categories"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("MONTHLY_BUDGET"); v != "" {
		cfg.Budget.Monthly = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Budget.Monthly == "" {
		cfg.Budget.Monthly = "30000"
	}
	if cfg.Budget.StateFile == "" {
		cfg.Budget.StateFile = "data/budget_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/bill_sentinel.db"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 0 8 * * *"
	}
	if cfg.Schedule.OverdueCron == "" {
		cfg.Schedule.OverdueCron = "0 0 9 * * 1"
	}
	if cfg.Schedule.MonthlyCron == "" {
		cfg.Schedule.MonthlyCron = "0 0 7 1 * *"
	}
	if cfg.Policy.RescheduleDays == 0 {
		cfg.Policy.RescheduleDays = 7
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	monthly, err := decimal.NewFromString(c.Budget.Monthly)
	if err != nil {
		return fmt.Errorf("budget.monthly %q is not a decimal: %w", c.Budget.Monthly, err)
	}
	if !monthly.IsPositive() {
		return fmt.Errorf("budget.monthly must be positive")
	}
	if c.Policy.RescheduleDays <= 0 {
		return fmt.Errorf("policy.reschedule_days must be positive")
	}
	if c.Policy.AmountUnit != nil && *c.Policy.AmountUnit <= 0 {
		return fmt.Errorf("policy.amount_unit must be positive")
	}
	if c.Policy.OverduePerDay != nil && *c.Policy.OverduePerDay < 0 {
		return fmt.Errorf("policy.overdue_per_day must not be negative")
	}
	if c.Policy.GraceDays != nil && *c.Policy.GraceDays < 0 {
		return fmt.Errorf("policy.grace_days must not be negative")
	}
	return nil
}

// MonthlyBudget returns the configured monthly budget as an exact decimal.
// Call Validate first.
func (c *Config) MonthlyBudget() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Budget.Monthly)
	return d
}

// EnginePolicy builds the scoring policy, falling back to engine defaults
// for any weight left unset. Explicitly configured zeroes are honored.
func (c *Config) EnginePolicy() engine.Policy {
	p := engine.DefaultPolicy()
	if c.Policy.OverduePerDay != nil {
		p.OverduePerDay = *c.Policy.OverduePerDay
	}
	if c.Policy.UpcomingPerDay != nil {
		p.UpcomingPerDay = *c.Policy.UpcomingPerDay
	}
	if c.Policy.UpcomingHorizonDays != nil {
		p.UpcomingHorizonDays = *c.Policy.UpcomingHorizonDays
	}
	if c.Policy.AmountUnit != nil {
		p.AmountUnit = *c.Policy.AmountUnit
	}
	if c.Policy.LateFeeBonus != nil {
		p.LateFeeBonus = *c.Policy.LateFeeBonus
	}
	if c.Policy.GraceDays != nil {
		p.GraceDays = *c.Policy.GraceDays
	}
	return p
}

// CategoryTable builds the injected category trait lookup.
func (c *Config) CategoryTable() model.CategoryTable {
	table := make(model.CategoryTable, len(c.Categories))
	for _, cat := range c.Categories {
		table[cat.Name] = model.CategoryInfo{Name: cat.Name, LateFee: cat.LateFee}
	}
	return table
}
