package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// defaultScanIntervalSeconds is the default delay between scan cycles.
	defaultScanIntervalSeconds = 30
	// defaultCooldownMinutes is the default cooldown window for repeat alerts.
	defaultCooldownMinutes = 15
	// defaultLookbackHours is the default trailing candle window per scan.
	defaultLookbackHours = 3
)

// Config is the configuration struct for the service.
type Config struct {
	// Markets represents the tracked markets.
	Markets []string
	// DhanClientID is the dhan api client id.
	DhanClientID string
	// DhanAccessToken is the dhan api access token.
	DhanAccessToken string
	// TelegramBotToken is the telegram bot token.
	TelegramBotToken string
	// TelegramChatID is the telegram destination chat id.
	TelegramChatID string
	// DBEndpoint is the rqlite endpoint for signal persistence.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// ScanIntervalSeconds is the delay between scan cycles.
	ScanIntervalSeconds int
	// CooldownMinutes is the cooldown window for repeat alerts.
	CooldownMinutes int
	// LookbackHours is the trailing candle window fetched per scan.
	LookbackHours int
	// MarketOpen is the market open time (IST).
	MarketOpen string
	// MarketClose is the market close time (IST).
	MarketClose string
	// MinSeriesLength is the minimum series length required for detection.
	MinSeriesLength int
	// Fallback substitutes synthetic series when the provider is unavailable.
	Fallback bool

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for monitor service"))
	}
	if cfg.DhanClientID == "" {
		errs = errors.Join(errs, fmt.Errorf("dhan client id cannot be an empty string"))
	}
	if cfg.DhanAccessToken == "" {
		errs = errors.Join(errs, fmt.Errorf("dhan access token cannot be an empty string"))
	}
	if cfg.ScanIntervalSeconds <= 0 {
		errs = errors.Join(errs, fmt.Errorf("scan interval must be positive"))
	}
	if cfg.CooldownMinutes <= 0 {
		errs = errors.Join(errs, fmt.Errorf("cooldown window must be positive"))
	}
	if cfg.LookbackHours <= 0 {
		errs = errors.Join(errs, fmt.Errorf("lookback window must be positive"))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	flags := []struct {
		name  string
		value interface{}
		usage string
	}{
		{"markets", &cfg.Markets, "the tracked markets"},
		{"dhanclientid", &cfg.DhanClientID, "the dhan api client id"},
		{"dhanaccesstoken", &cfg.DhanAccessToken, "the dhan api access token"},
		{"telegrambottoken", &cfg.TelegramBotToken, "the telegram bot token"},
		{"telegramchatid", &cfg.TelegramChatID, "the telegram chat id"},
		{"dbendpoint", &cfg.DBEndpoint, "the signal database endpoint"},
		{"dbuser", &cfg.DBUser, "the signal database user"},
		{"dbpass", &cfg.DBPass, "the signal database pass"},
		{"scanintervalseconds", &cfg.ScanIntervalSeconds, "the delay between scan cycles"},
		{"cooldownminutes", &cfg.CooldownMinutes, "the cooldown window for repeat alerts"},
		{"lookbackhours", &cfg.LookbackHours, "the trailing candle window per scan"},
		{"marketopen", &cfg.MarketOpen, "the market open time (IST)"},
		{"marketclose", &cfg.MarketClose, "the market close time (IST)"},
		{"minserieslength", &cfg.MinSeriesLength, "the minimum series length for detection"},
		{"fallback", &cfg.Fallback, "substitute synthetic data on provider failures"},
	}

	for _, f := range flags {
		err = cfg.registerFlag(f.name, f.value, f.usage)
		if err != nil {
			return err
		}
	}

	// Parse command-line flags.
	flag.Parse()

	if cfg.ScanIntervalSeconds == 0 {
		cfg.ScanIntervalSeconds = defaultScanIntervalSeconds
	}
	if cfg.CooldownMinutes == 0 {
		cfg.CooldownMinutes = defaultCooldownMinutes
	}
	if cfg.LookbackHours == 0 {
		cfg.LookbackHours = defaultLookbackHours
	}

	return cfg.Validate()
}
