// Package config loads service settings from the environment and an optional
// .env file. Keys map to environment variables by upper-casing and joining the
// path with underscores, so platforms.timeout is read from PLATFORMS_TIMEOUT.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
	Auth      Auth      `mapstructure:"auth"`
	Firebase  Firebase  `mapstructure:"firebase"`
	Redis     Redis     `mapstructure:"redis"`
	Sync      Sync      `mapstructure:"sync"`
	Platforms Platforms `mapstructure:"platforms"`
}

// Server configures the HTTP listener.
type Server struct {
	Port            string        `mapstructure:"port"             default:"8080"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s"`
	// AllowedOrigins is a comma separated CORS allow list; empty allows all.
	AllowedOrigins string `mapstructure:"allowed_origins" default:""`
}

// Origins splits AllowedOrigins into a list.
func (s Server) Origins() []string {
	var out []string
	for o := range strings.SplitSeq(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Log configures the process logger.
type Log struct {
	Level string `mapstructure:"level" default:"info"`
}

// Auth configures request authentication.
type Auth struct {
	// DevTokens is a comma separated token=uid list accepted besides Firebase
	// ID tokens. Leave empty outside local development.
	DevTokens string `mapstructure:"dev_tokens" default:""`
}

// Firebase identifies the project backing auth and Firestore.
type Firebase struct {
	ProjectID   string `mapstructure:"project_id"  default:"demo-test-project"`
	Credentials string `mapstructure:"credentials" default:""`
}

// Redis enables cross-instance sync locking. An empty Addr keeps locks in process.
type Redis struct {
	Addr     string `mapstructure:"addr"     default:""`
	Password string `mapstructure:"password" default:""`
	DB       int    `mapstructure:"db"       default:"0"`
}

// Sync tunes the synchronization run.
type Sync struct {
	Concurrency int           `mapstructure:"concurrency" default:"6"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"    default:"2m"`
	LockWait    time.Duration `mapstructure:"lock_wait"   default:"0s"`
}

// Platforms configures outbound calls to the third-party sources.
type Platforms struct {
	Timeout           time.Duration `mapstructure:"timeout"             default:"10s"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" default:"2"`
	Burst             int           `mapstructure:"burst"               default:"4"`
	UserAgent         string        `mapstructure:"user_agent"          default:"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"`
	LeetCodeURL       string        `mapstructure:"leetcode_url"        default:"https://leetcode.com"`
	CodeforcesURL     string        `mapstructure:"codeforces_url"      default:"https://codeforces.com"`
	CodeChefURL       string        `mapstructure:"codechef_url"        default:"https://www.codechef.com"`
	AtCoderURL        string        `mapstructure:"atcoder_url"         default:"https://atcoder.jp"`
	GeeksforGeeksURL  string        `mapstructure:"geeksforgeeks_url"   default:"https://www.geeksforgeeks.org"`
}

// Load reads dir/.env when present, then the environment, on top of the
// defaults declared in struct tags.
func Load(dir string) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()
	bindDefaults(v, reflect.TypeOf(Config{}), "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Sync.Concurrency < 1 {
		errs = append(errs, errors.New("sync.concurrency must be at least 1"))
	}
	if c.Sync.LockTTL <= 0 {
		errs = append(errs, errors.New("sync.lock_ttl must be positive"))
	}
	if c.Platforms.Timeout <= 0 {
		errs = append(errs, errors.New("platforms.timeout must be positive"))
	}
	if c.Platforms.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("platforms.requests_per_second must be positive"))
	}
	if c.Platforms.Burst < 1 {
		errs = append(errs, errors.New("platforms.burst must be at least 1"))
	}
	return errors.Join(errs...)
}

// bindDefaults registers every tagged leaf key with its default so that
// AutomaticEnv can resolve it during Unmarshal.
func bindDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Duration(0)) {
			bindDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
