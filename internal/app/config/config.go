package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はプロセス起動時に一度だけ読み込み、各層へ明示的に渡します。
type Config struct {
	Database DatabaseConfig
	API      APIConfig
	Limits   LimitsConfig

	// Debug は SQL の詳細ログと echo のデバッグモードを有効にします。
	Debug bool `env:"DEBUG" envDefault:"false"`
}

type DatabaseConfig struct {
	// URL が設定されていれば個別の項目より優先します。
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DATABASE_HOST" envDefault:"localhost"`
	Port     int    `env:"DATABASE_PORT" envDefault:"5433"`
	User     string `env:"DATABASE_USER" envDefault:"postgres"`
	Password string `env:"DATABASE_PASSWORD"`
	Name     string `env:"DATABASE_NAME" envDefault:"postgres"`
	SSLMode  string `env:"DATABASE_SSLMODE" envDefault:"disable"`

	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnectRetries  int           `env:"DATABASE_CONNECT_RETRIES" envDefault:"10"`
	RetryInterval   time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"5s"`
}

type APIConfig struct {
	Host         string        `env:"API_HOST" envDefault:"127.0.0.1"`
	Port         int           `env:"API_PORT" envDefault:"8000"`
	Title        string        `env:"API_TITLE" envDefault:"Yelp Data API"`
	Version      string        `env:"API_VERSION" envDefault:"1.0.0"`
	QueryTimeout time.Duration `env:"QUERY_TIMEOUT" envDefault:"30s"`
}

// LimitsConfig は1回の呼び出しで返す最大行数です。
// 名前付与 (JOIN) 版は重いので小さめにしています。
type LimitsConfig struct {
	Business        int `env:"LIMIT_BUSINESS" envDefault:"100"`
	User            int `env:"LIMIT_USER" envDefault:"100"`
	Checkin         int `env:"LIMIT_CHECKIN" envDefault:"100"`
	Review          int `env:"LIMIT_REVIEW" envDefault:"100"`
	ReviewWithNames int `env:"LIMIT_REVIEW_WITH_NAMES" envDefault:"10"`
	Tip             int `env:"LIMIT_TIP" envDefault:"100"`
	TipWithNames    int `env:"LIMIT_TIP_WITH_NAMES" envDefault:"25"`
}

// Load は環境変数から設定を読み込みます。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	limits := map[string]int{
		"LIMIT_BUSINESS":          c.Limits.Business,
		"LIMIT_USER":              c.Limits.User,
		"LIMIT_CHECKIN":           c.Limits.Checkin,
		"LIMIT_REVIEW":            c.Limits.Review,
		"LIMIT_REVIEW_WITH_NAMES": c.Limits.ReviewWithNames,
		"LIMIT_TIP":               c.Limits.Tip,
		"LIMIT_TIP_WITH_NAMES":    c.Limits.TipWithNames,
	}
	for name, v := range limits {
		if v < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.API.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive, got %s", c.API.QueryTimeout)
	}
	return nil
}

// DSN は接続文字列を返します。パスワードはエスケープされます。
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Addr は API の待ち受けアドレスです。
func (a APIConfig) Addr() string {
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}
