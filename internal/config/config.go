package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"afinance/internal/category"
)

// Config is built once at process start and handed to the engines
// explicitly. Nothing reads the environment after Load returns.
type Config struct {
	// Telegram
	BotToken string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Timezone used for every period computation.
	Timezone string
	Location *time.Location

	// Limits, in cents.
	MonthlyLimitCents  int64
	AutoInvestCents    int64
	WarnFraction       float64
	CategoryLimits     map[string]int64
	InvestmentCategory string

	// Alert feature flags.
	AlertNegativeBalance bool
	AlertMonthlyLimit    bool
	AlertCategoryLimits  bool

	// Worker schedule (hours in the configured timezone).
	SweepHour   int
	SweepMinute int
	ReportHour  int

	// Optional JSON file overriding the built-in taxonomies.
	RulesFile string
}

// Rules holds the classification taxonomies, loaded from RulesFile when set,
// otherwise the built-in defaults.
type Rules struct {
	Expense []category.Rule `json:"expense"`
	Income  []category.Rule `json:"income"`
}

func Load() *Config {
	cfg := &Config{
		BotToken:     getEnv("BOT_TOKEN", ""),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/afinance.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "afinance"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "expense_events"),

		Timezone: getEnv("TIMEZONE", "America/Cuiaba"),

		MonthlyLimitCents:  getEnvCents("MONTHLY_LIMIT", 50000),
		AutoInvestCents:    getEnvCents("AUTO_INVEST", 80000),
		WarnFraction:       getEnvFloat("WARN_FRACTION", 0.80),
		CategoryLimits:     parseCategoryLimits(getEnv("CATEGORY_LIMITS", "")),
		InvestmentCategory: getEnv("INVESTMENT_CATEGORY", category.InvestmentCategory),

		AlertNegativeBalance: getEnvBool("ALERT_NEGATIVE_BALANCE", true),
		AlertMonthlyLimit:    getEnvBool("ALERT_MONTHLY_LIMIT", true),
		AlertCategoryLimits:  getEnvBool("ALERT_CATEGORY_LIMITS", true),

		SweepHour:   getEnvInt("SWEEP_HOUR", 8),
		SweepMinute: getEnvInt("SWEEP_MINUTE", 0),
		ReportHour:  getEnvInt("REPORT_HOUR", 9),

		RulesFile: getEnv("RULES_FILE", ""),
	}

	if len(cfg.CategoryLimits) == 0 {
		cfg.CategoryLimits = DefaultCategoryLimits()
	}

	return cfg
}

// DefaultCategoryLimits returns the per-category monthly expense limits
// used when CATEGORY_LIMITS is not set, in cents.
func DefaultCategoryLimits() map[string]int64 {
	return map[string]int64{
		"Alimentação": 60000,
		"Mercado":     90000,
		"Transporte":  25000,
		"Moradia":     40000,
		"Contas":      70000,
		"Saúde":       25000,
		"Educação":    20000,
		"Lazer":       20000,
		"Assinaturas": 12000,
		"Roupas":      20000,
	}
}

// LoadRules reads the taxonomy override file, falling back to the built-in
// rules when no file is configured.
func (c *Config) LoadRules() (Rules, error) {
	if c.RulesFile == "" {
		return Rules{
			Expense: category.DefaultExpenseRules(),
			Income:  category.DefaultIncomeRules(),
		}, nil
	}

	data, err := os.ReadFile(c.RulesFile)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var rules Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", c.RulesFile, err)
	}
	if len(rules.Expense) == 0 {
		rules.Expense = category.DefaultExpenseRules()
	}
	if len(rules.Income) == 0 {
		rules.Income = category.DefaultIncomeRules()
	}
	return rules, nil
}

// Validate checks the configuration, resolving the timezone as a side
// effect, and returns every problem found in a single error.
func (c *Config) Validate() error {
	var errors []string

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	} else {
		c.Location = loc
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.MonthlyLimitCents < 0 {
		errors = append(errors, fmt.Sprintf("invalid monthly limit %d: must not be negative", c.MonthlyLimitCents))
	}
	if c.AutoInvestCents < 0 {
		errors = append(errors, fmt.Sprintf("invalid auto-invest amount %d: must not be negative", c.AutoInvestCents))
	}
	if c.WarnFraction <= 0 || c.WarnFraction >= 1 {
		errors = append(errors, fmt.Sprintf("invalid warn fraction %v: must be between 0 and 1 exclusive", c.WarnFraction))
	}
	for cat, limit := range c.CategoryLimits {
		if limit <= 0 {
			errors = append(errors, fmt.Sprintf("invalid limit %d for category '%s': must be positive", limit, cat))
		}
	}
	if c.InvestmentCategory == "" {
		errors = append(errors, "investment category cannot be empty")
	}

	if c.SweepHour < 0 || c.SweepHour > 23 {
		errors = append(errors, fmt.Sprintf("invalid sweep hour %d: must be between 0 and 23", c.SweepHour))
	}
	if c.SweepMinute < 0 || c.SweepMinute > 59 {
		errors = append(errors, fmt.Sprintf("invalid sweep minute %d: must be between 0 and 59", c.SweepMinute))
	}
	if c.ReportHour < 0 || c.ReportHour > 23 {
		errors = append(errors, fmt.Sprintf("invalid report hour %d: must be between 0 and 23", c.ReportHour))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// parseCategoryLimits parses "Alimentação:600,Mercado:900" into cents.
// Limits are given in whole currency units.
func parseCategoryLimits(s string) map[string]int64 {
	out := map[string]int64{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		units, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(name)] = units * 100
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvCents reads an amount in whole currency units and returns cents.
func getEnvCents(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if units, err := strconv.ParseInt(value, 10, 64); err == nil {
			return units * 100
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
