package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultFeedURL     = "https://interview.switcheo.com/prices.json"
	defaultIconBaseURL = "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens"
	defaultStateDir    = "./state"
	defaultJournalDir  = "./wal/swaps"
)

// Config is the resolved runtime configuration.
type Config struct {
	FeedURL         string
	IconBaseURL     string
	StateDir        string
	JournalDir      string
	BaseCurrency    string
	ListenAddr      string
	SettleDelay     time.Duration
	RefreshInterval time.Duration
	StaleTime       time.Duration
	InitialBalances map[string]decimal.Decimal
	TUI             bool
}

// ConfigTmp is the yaml shape before validation.
type ConfigTmp struct {
	FeedURL         string            `yaml:"feed_url,omitempty"`
	IconBaseURL     string            `yaml:"icon_base_url,omitempty"`
	StateDir        string            `yaml:"state_dir,omitempty"`
	JournalDir      string            `yaml:"journal_dir,omitempty"`
	BaseCurrency    string            `yaml:"base_currency,omitempty"`
	ListenAddr      string            `yaml:"listen_addr,omitempty"`
	SettleDelay     time.Duration     `yaml:"settle_delay,omitempty"`
	RefreshInterval time.Duration     `yaml:"refresh_interval,omitempty"`
	StaleTime       time.Duration     `yaml:"stale_time,omitempty"`
	InitialBalances map[string]string `yaml:"initial_balances,omitempty"`
}

// Get resolves configuration from the --config yaml file when given,
// otherwise from CLI flags and defaults.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", ":8080", "http listen address")
	tui := flag.Bool("tui", false, "run the interactive terminal swap form")
	flag.Parse()

	cfg := defaults()
	cfg.ListenAddr = *listen
	cfg.TUI = *tui

	if *configPath == "" {
		return cfg, nil
	}

	loaded, err := fromYaml(*configPath, cfg)
	if err != nil {
		return Config{}, err
	}
	loaded.TUI = *tui
	return loaded, nil
}

func defaults() Config {
	return Config{
		FeedURL:     defaultFeedURL,
		IconBaseURL: defaultIconBaseURL,
		StateDir:    defaultStateDir,
		JournalDir:  defaultJournalDir,
		ListenAddr:  ":8080",
	}
}

func fromYaml(path string, base Config) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := base
	if tmp.FeedURL != "" {
		cfg.FeedURL = tmp.FeedURL
	}
	if tmp.IconBaseURL != "" {
		cfg.IconBaseURL = tmp.IconBaseURL
	}
	if tmp.StateDir != "" {
		cfg.StateDir = tmp.StateDir
	}
	if tmp.JournalDir != "" {
		cfg.JournalDir = tmp.JournalDir
	}
	if tmp.BaseCurrency != "" {
		cfg.BaseCurrency = tmp.BaseCurrency
	}
	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.SettleDelay < 0 {
		return Config{}, fmt.Errorf("incorrect 'settle_delay' param in yaml config: must not be negative")
	}
	cfg.SettleDelay = tmp.SettleDelay
	cfg.RefreshInterval = tmp.RefreshInterval
	cfg.StaleTime = tmp.StaleTime

	if len(tmp.InitialBalances) > 0 {
		balances := make(map[string]decimal.Decimal, len(tmp.InitialBalances))
		for symbol, amountStr := range tmp.InitialBalances {
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return Config{}, fmt.Errorf("incorrect 'initial_balances' entry for %s in yaml config: %w", symbol, err)
			}
			if amount.IsNegative() {
				return Config{}, fmt.Errorf("incorrect 'initial_balances' entry for %s in yaml config: must not be negative", symbol)
			}
			balances[symbol] = amount
		}
		cfg.InitialBalances = balances
	}

	return cfg, nil
}
