package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Path          string `mapstructure:"path" json:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" json:"busy_timeout_ms"`
}

type LogConfig struct {
	Dir      string `mapstructure:"dir" json:"dir"`
	KeepDays int    `mapstructure:"keep_days" json:"keep_days"`
	Debug    bool   `mapstructure:"debug" json:"debug"`
}

type PDFConfig struct {
	OutputDir   string `mapstructure:"output_dir" json:"output_dir"`
	CompanyName string `mapstructure:"company_name" json:"company_name"`
	Branch      string `mapstructure:"branch" json:"branch"`
}

type BackupConfig struct {
	Dir string `mapstructure:"dir" json:"dir"`
}

type SecurityConfig struct {
	// DeletePINHash is a bcrypt hash. Empty disables the PIN prompt.
	DeletePINHash string `mapstructure:"delete_pin_hash" json:"delete_pin_hash"`
}

type ReconciliationConfig struct {
	ReissuePDF bool `mapstructure:"reissue_pdf" json:"reissue_pdf"`
}

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database" json:"database"`
	Log            LogConfig            `mapstructure:"log" json:"log"`
	PDF            PDFConfig            `mapstructure:"pdf" json:"pdf"`
	Backup         BackupConfig         `mapstructure:"backup" json:"backup"`
	Security       SecurityConfig       `mapstructure:"security" json:"security"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation" json:"reconciliation"`
}

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "gestion_textil.db")
	v.SetDefault("database.busy_timeout_ms", 10000)
	v.SetDefault("log.dir", "")
	v.SetDefault("log.keep_days", 10)
	v.SetDefault("log.debug", false)
	v.SetDefault("pdf.output_dir", "reportes")
	v.SetDefault("pdf.company_name", "Gestión Textil")
	v.SetDefault("pdf.branch", "0001")
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("security.delete_pin_hash", "")
	v.SetDefault("reconciliation.reissue_pdf", true)
}

// Load reads config.json from path (or the user config dir when path is
// empty). A missing file yields the defaults. GT_* environment variables
// override file values, e.g. GT_DATABASE_PATH.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("GT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	globalMu.Lock()
	globalConfig = &c
	globalMu.Unlock()
	return &c, nil
}

// Save writes the configuration as indented JSON
func Save(c *Config, path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	globalMu.Lock()
	globalConfig = c
	globalMu.Unlock()
	return nil
}

// Get returns the last loaded configuration, loading defaults on first use
func Get() *Config {
	globalMu.RLock()
	c := globalConfig
	globalMu.RUnlock()
	if c != nil {
		return c
	}

	c, err := Load("")
	if err != nil {
		v := viper.New()
		setDefaults(v)
		c = &Config{}
		_ = v.Unmarshal(c)
	}
	return c
}

// DefaultPath returns <UserConfigDir>/GestionTextil/config.json
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "GestionTextil", "config.json"), nil
}
