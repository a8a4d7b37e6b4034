package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpulse/taskpulse/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKPULSE_DATABASE_URL", "postgres://localhost:5432/taskpulse")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Notification.Enabled)
	assert.Equal(t, "notifications", cfg.Notification.Topic)
	assert.Equal(t, "notification-consumer-group", cfg.Notification.GroupID)
	assert.Equal(t, 24, cfg.Notification.ReminderLeadHours)
	assert.Equal(t, time.Hour, cfg.Notification.ReminderScanInterval)
	assert.Equal(t, 24*time.Hour, cfg.Notification.ReminderLead())
	assert.False(t, cfg.Notification.EmailConfigured())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKPULSE_DATABASE_URL", "postgres://localhost:5432/taskpulse")
	t.Setenv("TASKPULSE_SERVER_PORT", "9090")
	t.Setenv("TASKPULSE_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TASKPULSE_NOTIFICATION_TOPIC", "alerts")
	t.Setenv("TASKPULSE_NOTIFICATION_ENABLED", "false")
	t.Setenv("TASKPULSE_NOTIFICATION_REMINDER_LEAD_HOURS", "48")
	t.Setenv("TASKPULSE_NOTIFICATION_SMTP_HOST", "mail.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "alerts", cfg.Notification.Topic)
	assert.False(t, cfg.Notification.Enabled)
	assert.Equal(t, 48*time.Hour, cfg.Notification.ReminderLead())
	assert.True(t, cfg.Notification.EmailConfigured())
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	t.Setenv("TASKPULSE_DATABASE_URL", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("TASKPULSE_DATABASE_URL", "postgres://localhost:5432/taskpulse")
	t.Setenv("TASKPULSE_SERVER_LOG_LEVEL", "verbose")

	_, err := config.Load()
	assert.Error(t, err)
}
