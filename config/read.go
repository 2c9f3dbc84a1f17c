package config

import (
	"fmt"
	"strings"

	"github.com/Alijeyrad/mindcare_backend/pkg/constants"
	"github.com/spf13/viper"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// Allow env vars to override config values.
	// e.g. MINDCARE_REDIS_ADDR overrides redis.addr
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The config file is optional in container deployments where everything comes from env.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %v", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// setDefaults registers every key that has a sane fallback. Registering a key
// also makes AutomaticEnv see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.rate_limit.max", 20)
	v.SetDefault("server.rate_limit.expiration_seconds", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("kv.key_prefix", "mindcare:")

	v.SetDefault("authentication.paseto.mode", "local")
	v.SetDefault("authentication.paseto.issuer", "mindcare")
	v.SetDefault("authentication.paseto.audience", "mindcare-clients")
	v.SetDefault("authentication.paseto.access_ttl_minutes", 60)
	v.SetDefault("authentication.paseto.refresh_ttl_days", 30)
	v.SetDefault("authentication.paseto.local_key_hex", "")
	v.SetDefault("authentication.session_ttl_minutes", 60*24*30)
	v.SetDefault("authentication.encryption_key", "")
	v.SetDefault("authentication.public_api_key", "")

	v.SetDefault("password.algorithm", "argon2id")
	v.SetDefault("password.memory_kib", 64*1024)
	v.SetDefault("password.iterations", 3)
	v.SetDefault("password.parallelism", 2)
	v.SetDefault("password.salt_length", 16)
	v.SetDefault("password.key_length", 32)

	v.SetDefault("invite.max_generate_attempts", 5)
	v.SetDefault("crisis.enforce_forward_transitions", false)
	v.SetDefault("patients.default_region", "BR")
	v.SetDefault("patients.email_domain", "mindcare.local")
	v.SetDefault("chat.poll_interval_seconds", 2)
	v.SetDefault("chat.max_message_length", 4000)

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")

	v.SetDefault("observability.service_name", constants.ServiceName)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)
}
