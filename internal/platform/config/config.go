package config

import (
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Server captures process level configuration. Only PORT is needed to run;
// every backend is opt-in through its URL.
type Server struct {
	Port            int           `env:"PORT,default=3000"`
	Environment     string        `env:"APP_ENV,default=prod"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	AdminToken      string        `env:"ADMIN_TOKEN"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	RedisURL        string        `env:"REDIS_URL"`
	KafkaBrokers    string        `env:"KAFKA_BROKERS"`
	KafkaTopic      string        `env:"KAFKA_TOPIC,default=enrollments"`
	AuditBuffer     int           `env:"AUDIT_BUFFER,default=0"`
	AuditRetention  int           `env:"AUDIT_RETENTION,default=1000"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	TrustedProxies  string        `env:"TRUSTED_PROXIES"`
	SubmitRateLimit int           `env:"SUBMIT_RATE_LIMIT,default=0"`
	SubmitWindow    time.Duration `env:"SUBMIT_RATE_WINDOW,default=1m"`
}

// FromEnv loads an optional .env file, then reads the process environment.
// Variables already set in the environment win over .env entries.
func FromEnv() (Server, error) {
	_ = godotenv.Load()
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return Server{}, fmt.Errorf("read environment: %w", err)
	}
	return Parse(es)
}

// Parse builds a Server config from an explicit variable set.
func Parse(es env.EnvSet) (Server, error) {
	var cfg Server
	if err := env.Unmarshal(es, &cfg); err != nil {
		return Server{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Server{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.RequestTimeout <= 0 {
		return Server{}, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if cfg.AuditRetention <= 0 {
		return Server{}, fmt.Errorf("AUDIT_RETENTION must be positive")
	}
	if cfg.SubmitRateLimit < 0 {
		return Server{}, fmt.Errorf("SUBMIT_RATE_LIMIT must not be negative")
	}
	if _, err := cfg.TrustedProxyPrefixes(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// TrustedProxyPrefixes parses the comma separated TRUSTED_PROXIES CIDRs.
// A bare address is treated as a single-host prefix.
func (s Server) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, raw := range strings.Split(s.TrustedProxies, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
			}
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes, nil
}
