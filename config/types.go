package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

type Config struct {
	Redis          RedisConfig          `mapstructure:"redis"`
	KV             KVConfig             `mapstructure:"kv"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Password       PasswordConfig       `mapstructure:"password"`
	Invite         InviteConfig         `mapstructure:"invite"`
	Crisis         CrisisConfig         `mapstructure:"crisis"`
	Patients       PatientsConfig       `mapstructure:"patients"`
	Chat           ChatConfig           `mapstructure:"chat"`
	Email          EmailConfig          `mapstructure:"email"`
	SMS            SMSConfig            `mapstructure:"sms"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Nats           NatsConfig           `mapstructure:"nats"`
}

type NatsConfig struct {
	URL     string `mapstructure:"url" yaml:"url"`
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

// KVConfig controls how records are laid out in the key-value store.
type KVConfig struct {
	// KeyPrefix namespaces every key, e.g. "mindcare:" gives "mindcare:crisis:<id>".
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	Max               int  `mapstructure:"max"`
	ExpirationSeconds int  `mapstructure:"expiration_seconds"`
}

type ServerConfig struct {
	Port           int             `mapstructure:"port"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds"`
	Environment    string          `mapstructure:"environment"`
	Domain         string          `mapstructure:"domain"`
	BasePath       string          `mapstructure:"base_path"`
	CORS           CORSConfig      `mapstructure:"cors"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	Paseto            PasetoConfig `mapstructure:"paseto"`
	SessionTTLMinutes int          `mapstructure:"session_ttl_minutes"`
	// EncryptionKey is a 32-byte hex string used for AES-256-GCM encryption
	// of patient phone numbers. Empty disables encryption at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
	// PublicAPIKey gates the unauthenticated routes (signup, validate-invite, login).
	// Empty leaves them open.
	PublicAPIKey string `mapstructure:"public_api_key"`
}

type PasetoConfig struct {
	Mode             string `mapstructure:"mode"`
	LocalKeyHex      string `mapstructure:"local_key_hex"`
	SecretKeyHex     string `mapstructure:"secret_key_hex"`
	PublicKeyHex     string `mapstructure:"public_key_hex"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLDays   int    `mapstructure:"refresh_ttl_days"`
}

type PasswordConfig struct {
	Algorithm     string `mapstructure:"algorithm"`
	MemoryKiB     uint32 `mapstructure:"memory_kib"`
	Iterations    uint32 `mapstructure:"iterations"`
	Parallelism   uint8  `mapstructure:"parallelism"`
	SaltLength    uint32 `mapstructure:"salt_length"`
	KeyLength     uint32 `mapstructure:"key_length"`
	LowMemoryMode bool   `mapstructure:"low_memory_mode"`
}

type InviteConfig struct {
	// MaxGenerateAttempts bounds the retries when a freshly drawn code already exists.
	MaxGenerateAttempts int `mapstructure:"max_generate_attempts"`
}

type CrisisConfig struct {
	// EnforceForwardTransitions rejects pending <- in-progress <- resolved regressions.
	EnforceForwardTransitions bool `mapstructure:"enforce_forward_transitions"`
}

type PatientsConfig struct {
	DefaultRegion string `mapstructure:"default_region"` // ISO 3166 region for phone parsing
	EmailDomain   string `mapstructure:"email_domain"`   // domain of synthesized patient logins
}

type ChatConfig struct {
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds"`
	MaxMessageLength    int `mapstructure:"max_message_length"`
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SMSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	SMSIR   SMSIRConfig `mapstructure:"smsir"`
}

type SMSIRConfig struct {
	APIKey                 string `mapstructure:"api_key"`
	SecretKey              string `mapstructure:"secret_key"`
	CrisisStatusTemplateID string `mapstructure:"crisis_status_template_id"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`        // e.g. "logs/app.log"
	MaxSizeMB  int    `mapstructure:"max_size_mb"` // rotate after N MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	Username string `mapstructure:"username"` // for Grafana Cloud basic auth
	Password string `mapstructure:"password"`
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}

	p := c.Authentication.Paseto
	switch p.Mode {
	case "local":
		if p.LocalKeyHex == "" {
			errs = append(errs, errors.New("authentication.paseto.local_key_hex is required in local mode"))
		}
	case "public":
		if p.SecretKeyHex == "" && p.PublicKeyHex == "" {
			errs = append(errs, errors.New("authentication.paseto needs secret_key_hex or public_key_hex in public mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("authentication.paseto.mode must be local or public, got %q", p.Mode))
	}
	if p.Issuer == "" || p.Audience == "" {
		errs = append(errs, errors.New("authentication.paseto.issuer and audience are required"))
	}

	if k := c.Authentication.EncryptionKey; k != "" {
		if b, err := hex.DecodeString(k); err != nil || len(b) != 32 {
			errs = append(errs, errors.New("authentication.encryption_key must be 64 hex characters"))
		}
	}

	if c.Invite.MaxGenerateAttempts < 1 {
		errs = append(errs, errors.New("invite.max_generate_attempts must be at least 1"))
	}
	if c.Chat.PollIntervalSeconds < 1 {
		errs = append(errs, errors.New("chat.poll_interval_seconds must be at least 1"))
	}
	if c.Nats.Enabled && c.Nats.URL == "" {
		errs = append(errs, errors.New("nats.url is required when nats is enabled"))
	}

	return errors.Join(errs...)
}
