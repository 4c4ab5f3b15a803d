// Package config loads credentials and run settings from the environment,
// a .env file and the per-user config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/danielholmes839/microstatus-dtr/internal/microstatus"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	DirName        = ".microstatus"
	FileName       = "config.yaml"
	CookieFileName = "cookies.yaml"
	DotEnvFile     = ".env"
)

var ErrMissingCredentials = errors.New("missing employee id or password: run `microstatus setup` or set EMPLOYEE_ID and PASSWORD")

type Timeouts struct {
	Navigation         time.Duration `yaml:"navigation,omitempty"`
	Element            time.Duration `yaml:"element,omitempty"`
	VerificationDetect time.Duration `yaml:"verification_detect,omitempty"`
	Rejection          time.Duration `yaml:"rejection,omitempty"`
	Dialog             time.Duration `yaml:"dialog,omitempty"`
	Settle             time.Duration `yaml:"settle,omitempty"`
}

type Discord struct {
	WebhookID    string `yaml:"webhook_id,omitempty"`
	WebhookToken string `yaml:"webhook_token,omitempty"`
}

func (d Discord) Enabled() bool {
	return d.WebhookID != "" && d.WebhookToken != ""
}

type Config struct {
	EmployeeID string `yaml:"employee_id"`
	Password   string `yaml:"password"`

	BaseURL        string `yaml:"base_url,omitempty"`
	Strategy       string `yaml:"strategy,omitempty"`
	StatusEndpoint string `yaml:"status_endpoint,omitempty"`
	Headless       *bool  `yaml:"headless,omitempty"`

	// MaxVerificationAttempts caps rejected codes; 0 keeps asking until the
	// operator cancels.
	MaxVerificationAttempts int      `yaml:"max_verification_attempts,omitempty"`
	CookieFile              string   `yaml:"cookie_file,omitempty"`
	Timeouts                Timeouts `yaml:"timeouts,omitempty"`
	Discord                 Discord  `yaml:"discord,omitempty"`
}

// Dir returns the per-user config directory (~/.microstatus).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns ~/.microstatus/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file at path, then applies variables from .env and
// the process environment, which win over the file. When path is empty the
// default path is used and may be absent.
func Load(fs afero.Fs, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		cfg, err = &Config{}, nil
	}
	if err != nil {
		return nil, err
	}

	env, err := loadDotEnv(fs)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	cfg.setDefaults(filepath.Dir(path))

	if cfg.EmployeeID == "" || cfg.Password == "" {
		return nil, ErrMissingCredentials
	}

	return cfg, nil
}

// ReadFile reads the config file as written, without environment overrides
// or defaults.
func ReadFile(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ReadFileOrEmpty is ReadFile for callers about to rewrite the file: only a
// missing file yields an empty config. Unreadable or malformed files are
// errors so their settings are not overwritten.
func ReadFileOrEmpty(fs afero.Fs, path string) (*Config, error) {
	cfg, err := ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// loadDotEnv parses .env in the working directory. Non-empty process
// environment variables take precedence, same as godotenv.Load.
func loadDotEnv(fs afero.Fs) (func(string) (string, bool), error) {
	dotenv := map[string]string{}

	f, err := fs.Open(DotEnvFile)
	switch {
	case err == nil:
		defer f.Close()
		dotenv, err = godotenv.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", DotEnvFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to open %s: %w", DotEnvFile, err)
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	vars := map[string]*string{
		"EMPLOYEE_ID":                 &cfg.EmployeeID,
		"PASSWORD":                    &cfg.Password,
		"MICROSTATUS_BASE_URL":        &cfg.BaseURL,
		"MICROSTATUS_STRATEGY":        &cfg.Strategy,
		"MICROSTATUS_STATUS_ENDPOINT": &cfg.StatusEndpoint,
		"DISCORD_WEBHOOK_ID":          &cfg.Discord.WebhookID,
		"DISCORD_WEBHOOK_TOKEN":       &cfg.Discord.WebhookToken,
	}
	for key, dst := range vars {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("MICROSTATUS_MAX_VERIFICATION_ATTEMPTS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MICROSTATUS_MAX_VERIFICATION_ATTEMPTS: %w", err)
		}
		cfg.MaxVerificationAttempts = n
	}

	// ENV=dev shows the browser window
	if v, ok := lookup("ENV"); ok && v == "dev" {
		cfg.Headless = boolPtr(false)
	}
	return nil
}

func (cfg *Config) setDefaults(dir string) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = microstatus.DefaultBaseURL
	}
	if cfg.Strategy == "" {
		cfg.Strategy = microstatus.StrategyUI
	}
	if cfg.StatusEndpoint == "" {
		cfg.StatusEndpoint = microstatus.DefaultStatusEndpoint
	}
	if cfg.Headless == nil {
		cfg.Headless = boolPtr(true)
	}
	if cfg.CookieFile == "" {
		cfg.CookieFile = filepath.Join(dir, CookieFileName)
	}

	defaults := microstatus.DefaultTimeouts()
	t := &cfg.Timeouts
	if t.Navigation == 0 {
		t.Navigation = 30 * time.Second
	}
	if t.Element == 0 {
		t.Element = defaults.Element
	}
	if t.VerificationDetect == 0 {
		t.VerificationDetect = defaults.VerificationDetect
	}
	if t.Rejection == 0 {
		t.Rejection = defaults.Rejection
	}
	if t.Dialog == 0 {
		t.Dialog = defaults.Dialog
	}
	if t.Settle == 0 {
		t.Settle = defaults.Settle
	}
}

// PortalTimeouts converts the configured timeouts for the portal automation.
func (cfg *Config) PortalTimeouts() microstatus.Timeouts {
	return microstatus.Timeouts{
		Element:            cfg.Timeouts.Element,
		VerificationDetect: cfg.Timeouts.VerificationDetect,
		Rejection:          cfg.Timeouts.Rejection,
		Dialog:             cfg.Timeouts.Dialog,
		Settle:             cfg.Timeouts.Settle,
	}
}

func (cfg *Config) IsHeadless() bool {
	return cfg.Headless == nil || *cfg.Headless
}

// Save writes cfg to path with owner-only permissions.
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
