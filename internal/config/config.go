// Package config defines the global configuration for the planrelay service.
// Configuration is loaded once at process startup and is immutable thereafter.
// It follows 12-Factor App principles by strictly separating code from
// configuration: every value comes from the environment (optionally seeded
// from a .env file) and any missing required value or invalid format aborts
// startup (fail fast). Payload-shape problems never reach this layer; only
// caller bugs do.
package config

import (
	"time"

	"planrelay/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct for the service. It is
// populated once during process initialization and never modified.
// Sub-components receive only the specific config subsets they require.
type Config struct {
	// System Metadata
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	Service     string `envconfig:"SERVICE_NAME" default:"planrelay"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// Domain Configurations
	Server       ServerConfig
	Inbound      InboundConfig
	Notification NotificationConfig
	Discord      DiscordConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"29s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// InboundConfig holds settings for the webhook ingestion endpoint.
type InboundConfig struct {
	// Token is the shared secret the source system appends as ?token=...
	// An empty token disables authentication (local development only).
	Token SecretString `envconfig:"TOKEN"`

	// MaxBodyBytes caps the accepted request body size.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576" validate:"min=1024"`
}

// NotificationConfig shapes the generated notification text and links.
type NotificationConfig struct {
	// Locale selects the language for generated text ("es" or "en").
	Locale string `envconfig:"NOTIF_LOCALE" default:"es" validate:"oneof=es en"`

	// DesignURLTemplate deep-links design-element embeds, e.g.
	// https://app.hacknplan.com/p/{ProjectId}/gamemodel?nodeId={DesignElementId}&nodeTabId=basicinfo
	// Empty disables design links.
	DesignURLTemplate string `envconfig:"HNP_URL_TEMPLATE"`

	// BoardURLTemplate deep-links work-item embeds to their board, e.g.
	// https://app.hacknplan.com/p/{ProjectId}/kanban?categoryId={CategoryId}&boardId={BoardId}
	// Empty disables board links.
	BoardURLTemplate string `envconfig:"HNP_BOARD_URL_TEMPLATE"`

	// MaxDescriptionLength caps embed descriptions; longer text is truncated
	// with a trailing ellipsis.
	MaxDescriptionLength int `envconfig:"MAX_DESCRIPTION_LENGTH" default:"1000" validate:"min=1,max=4096"`
}

// DiscordConfig holds settings for outbound delivery to the Discord channel
// webhook.
type DiscordConfig struct {
	// WebhookURL is the Discord channel webhook. Empty disables delivery:
	// events are normalized and logged but not sent.
	WebhookURL SecretString `envconfig:"DISCORD_WEBHOOK_URL"`

	UserAgent string        `envconfig:"DISCORD_USER_AGENT" default:"planrelay/1.0"`
	Timeout   time.Duration `envconfig:"DISCORD_TIMEOUT" default:"10s"`

	// Retry tuning for transient delivery failures (429, 5xx, network).
	MaxRetries int           `envconfig:"DISCORD_MAX_RETRIES" default:"3" validate:"min=0,max=10"`
	MinWait    time.Duration `envconfig:"DISCORD_RETRY_MIN_WAIT" default:"500ms"`
	MaxWait    time.Duration `envconfig:"DISCORD_RETRY_MAX_WAIT" default:"10s"`

	// Dispatcher sizing: deliveries run off the request path so the source
	// webhook gets an immediate acknowledgment.
	QueueSize int `envconfig:"DISCORD_QUEUE_SIZE" default:"64" validate:"min=1"`
	Workers   int `envconfig:"DISCORD_WORKERS" default:"2" validate:"min=1,max=16"`
}

// DeliveryEnabled reports whether a Discord webhook is configured.
func (c DiscordConfig) DeliveryEnabled() bool {
	return c.WebhookURL.IsSet()
}

// Locale returns the configured locale as its typed form.
func (c NotificationConfig) TypedLocale() types.Locale {
	return types.Locale(c.Locale)
}
