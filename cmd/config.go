package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Environment variables overriding the configuration file. They are also
// passed to extensions.
const (
	EnvLedgerFile      = "FOLIO_LEDGER_FILE"
	EnvMarketFile      = "FOLIO_MARKET_FILE"
	EnvDefaultCurrency = "FOLIO_DEFAULT_CURRENCY"
	EnvDataPoint       = "FOLIO_DATA_POINT"
	EnvLogLevel        = "FOLIO_LOG_LEVEL"
	EnvLogPretty       = "FOLIO_LOG_PRETTY"
)

// Config is the configuration of the folio commands.
//
// Values are layered, each one overriding the previous: defaults, the TOML
// file, the .env file, the process environment, and finally the global flags.
type Config struct {
	LedgerFile      string    `toml:"ledger_file"`
	MarketFile      string    `toml:"market_file"`
	DefaultCurrency string    `toml:"default_currency"`
	DataPoint       string    `toml:"data_point"`
	Log             LogConfig `toml:"log"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LedgerFile:      "ledger.jsonl",
		MarketFile:      ".folio/market.db",
		DefaultCurrency: "USD",
		DataPoint:       "adjusted_close",
		Log:             LogConfig{Level: "warn", Pretty: true},
	}
}

// LoadConfig reads the TOML file at path over the defaults. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return c, nil
}

// Environment returns the FOLIO_* variables of the .env file at path,
// overridden by the ones of the process. A missing .env file is ignored.
func Environment(path string) (map[string]string, error) {
	env := make(map[string]string)
	if path != "" {
		dotenv, err := godotenv.Read(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("cannot read %q: %w", path, err)
		}
		for k, v := range dotenv {
			if strings.HasPrefix(k, "FOLIO_") {
				env[k] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "FOLIO_") {
			env[k] = v
		}
	}
	return env, nil
}

// Override applies the environment variables set in env.
func (c *Config) Override(env map[string]string) error {
	set := func(key string, dst *string) {
		if v, ok := env[key]; ok && v != "" {
			*dst = v
		}
	}
	set(EnvLedgerFile, &c.LedgerFile)
	set(EnvMarketFile, &c.MarketFile)
	set(EnvDefaultCurrency, &c.DefaultCurrency)
	set(EnvDataPoint, &c.DataPoint)
	set(EnvLogLevel, &c.Log.Level)
	if v, ok := env[EnvLogPretty]; ok && v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", EnvLogPretty, v, err)
		}
		c.Log.Pretty = pretty
	}
	return nil
}

// Environ returns c as FOLIO_* variables, in the os.Environ format.
func (c Config) Environ() []string {
	return []string{
		EnvLedgerFile + "=" + c.LedgerFile,
		EnvMarketFile + "=" + c.MarketFile,
		EnvDefaultCurrency + "=" + c.DefaultCurrency,
		EnvDataPoint + "=" + c.DataPoint,
		EnvLogLevel + "=" + c.Log.Level,
		EnvLogPretty + "=" + strconv.FormatBool(c.Log.Pretty),
	}
}
