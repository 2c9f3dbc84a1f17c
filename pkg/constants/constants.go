package constants

const (
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is prepended to every environment override, e.g. MINDCARE_REDIS_ADDR.
	EnvPrefix = "MINDCARE"

	ServiceName = "mindcare_backend"

	// EventSubjectRoot is the first token of every NATS subject we publish.
	EventSubjectRoot = "mindcare"
)
