package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	Redis        RedisConfig        `mapstructure:"redis" validate:"required"`
	Notification NotificationConfig `mapstructure:"notification" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains connection settings for the Redis instance backing the
// notification broker.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// NotificationConfig contains all settings for the notification pipeline:
// the global enable switch, the broker topic and consumer group, the outbound
// email transport, and the reminder scan schedule.
type NotificationConfig struct {
	// Enabled globally switches notification publishing on or off. When
	// disabled, committed events are suppressed with a log line instead of
	// being published to the broker.
	Enabled bool `mapstructure:"enabled"`

	// Topic is the broker stream carrying serialized notification messages.
	Topic string `mapstructure:"topic" validate:"required"`

	// GroupID is the consumer-group identity shared by all consumer workers.
	GroupID string `mapstructure:"group_id" validate:"required"`

	// SMTPHost and SMTPPort locate the outbound mail relay. An empty host
	// means email is unconfigured and the consumer degrades gracefully.
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" validate:"gte=0,lt=65536"`

	// SMTPFrom is the sender address stamped on outgoing notification email.
	SMTPFrom string `mapstructure:"smtp_from"`

	// ReminderLeadHours is how long before a task's due date the reminder
	// fires.
	ReminderLeadHours int `mapstructure:"reminder_lead_hours" validate:"gt=0"`

	// ReminderScanInterval is how often the reminder scanner runs.
	ReminderScanInterval time.Duration `mapstructure:"reminder_scan_interval" validate:"required"`
}

// ReminderLead returns the reminder lead time as a duration.
func (c NotificationConfig) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadHours) * time.Hour
}

// EmailConfigured reports whether an outbound mail relay has been configured.
func (c NotificationConfig) EmailConfigured() bool {
	return c.SMTPHost != ""
}
