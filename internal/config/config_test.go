package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.SlotDuration)
	assert.Equal(t, 7, cfg.HorizonDays)
	assert.Equal(t, 5*time.Second, cfg.ReplyDelay)
	assert.Equal(t, time.Minute, cfg.ReminderTick)
	assert.Equal(t, "11:30", cfg.CountdownAt)
	assert.Equal(t, 5*time.Hour, cfg.NearTermLead)
	assert.Equal(t, "0", cfg.ClosedWeekdays)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SLOT_DURATION", "30m")
	t.Setenv("HORIZON_DAYS", "14")
	t.Setenv("REPLY_DELAY", "0s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.SlotDuration)
	assert.Equal(t, 14, cfg.HorizonDays)
	assert.Equal(t, time.Duration(0), cfg.ReplyDelay)
}

func TestLoadIgnoresUnparseable(t *testing.T) {
	t.Setenv("HORIZON_DAYS", "not-a-number")
	t.Setenv("SLOT_DURATION", "bogus")

	cfg := Load()

	assert.Equal(t, 7, cfg.HorizonDays)
	assert.Equal(t, time.Hour, cfg.SlotDuration)
}
