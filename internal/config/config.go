// Package config provides configuration loading for clamtap.
// It supports a layered configuration approach with priority:
// CLI flags > environment variables (CLAMTAP_*) > config file (~/.clamtap.yaml).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmello/clamtap/internal/clamd"
)

// Config holds all clamtap configuration options.
type Config struct {
	ClamdSocket  string        `mapstructure:"clamd_socket" yaml:"clamd_socket"`
	Upstream     string        `mapstructure:"upstream" yaml:"upstream"`
	ListenAddr   string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	APIAddr      string        `mapstructure:"api_addr" yaml:"api_addr"`
	OutputFormat string        `mapstructure:"output_format" yaml:"output_format"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Methods and StatusCodes gate which observed exchanges are eligible
	// for scanning.
	Methods     []string `mapstructure:"methods" yaml:"methods"`
	StatusCodes []int    `mapstructure:"status_codes" yaml:"status_codes"`

	ScanWorkers int `mapstructure:"scan_workers" yaml:"scan_workers"`
	ScanQueue   int `mapstructure:"scan_queue" yaml:"scan_queue"`

	DedupCapacity uint    `mapstructure:"dedup_capacity" yaml:"dedup_capacity"`
	DedupFPRate   float64 `mapstructure:"dedup_fp_rate" yaml:"dedup_fp_rate"`
}

// Defaults returns a Config populated with default values.
func Defaults() Config {
	return Config{
		ClamdSocket:   clamd.DefaultSocketPath,
		ListenAddr:    ":8880",
		APIAddr:       ":8881",
		OutputFormat:  "table",
		Timeout:       30 * time.Second,
		Methods:       []string{"GET"},
		StatusCodes:   []int{200},
		ScanWorkers:   4,
		ScanQueue:     256,
		DedupCapacity: 10_000,
		DedupFPRate:   0.001,
	}
}

// Load reads configuration from ~/.clamtap.yaml and environment variables.
// It does NOT apply CLI flag overrides — call ApplyFlags for that.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".clamtap")
	v.SetConfigType("yaml")

	home, err := os.UserHomeDir()
	if err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("CLAMTAP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)

	v.SetEnvPrefix("CLAMTAP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ApplyFlags overrides config values with any CLI flags that were explicitly set.
func ApplyFlags(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("clamd-socket") {
		val, _ := flags.GetString("clamd-socket")
		cfg.ClamdSocket = val
	}
	if flags.Changed("upstream") {
		val, _ := flags.GetString("upstream")
		cfg.Upstream = val
	}
	if flags.Changed("listen") {
		val, _ := flags.GetString("listen")
		cfg.ListenAddr = val
	}
	if flags.Changed("api") {
		val, _ := flags.GetString("api")
		cfg.APIAddr = val
	}
	if flags.Changed("output") {
		val, _ := flags.GetString("output")
		cfg.OutputFormat = val
	}
	if flags.Changed("timeout") {
		val, _ := flags.GetDuration("timeout")
		cfg.Timeout = val
	}
	if flags.Changed("workers") {
		val, _ := flags.GetInt("workers")
		cfg.ScanWorkers = val
	}
}

// ConfigFilePath returns the default config file path (~/.clamtap.yaml).
func ConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clamtap.yaml"
	}
	return filepath.Join(home, ".clamtap.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("clamd_socket", clamd.DefaultSocketPath)
	v.SetDefault("listen_addr", ":8880")
	v.SetDefault("api_addr", ":8881")
	v.SetDefault("output_format", "table")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("methods", []string{"GET"})
	v.SetDefault("status_codes", []int{200})
	v.SetDefault("scan_workers", 4)
	v.SetDefault("scan_queue", 256)
	v.SetDefault("dedup_capacity", 10_000)
	v.SetDefault("dedup_fp_rate", 0.001)
}
