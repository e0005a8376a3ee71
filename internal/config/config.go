package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Data files
	DataDir          string
	AppointmentsFile string
	StatusFile       string
	SeenPhonesFile   string

	// Business calendar
	Timezone       string
	BusinessOpen   string // "HH:MM"
	BusinessClose  string // "HH:MM"
	ClosedWeekdays string // comma-separated 0-6, 0=Sunday
	SlotDuration   time.Duration
	HorizonDays    int

	// Dialogue
	ReplyDelay     time.Duration
	DialogStateTTL time.Duration
	RedisAddr      string
	RedisPassword  string

	// Reminders
	ReminderTick    time.Duration
	CountdownAt     string // local "HH:MM" for the daily countdown reminder
	NearTermLead    time.Duration
	CountdownWindow int // max days ahead for countdown reminders

	// WhatsApp Cloud API
	WhatsAppToken       string
	WhatsAppPhoneID     string
	WhatsAppVerifyToken string

	// Text generation (optional)
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:          getEnv("DATA_DIR", "data"),
		AppointmentsFile: getEnv("APPOINTMENTS_FILE", "appointments.xlsx"),
		StatusFile:       getEnv("STATUS_FILE", "status.json"),
		SeenPhonesFile:   getEnv("SEEN_PHONES_FILE", "seen_phones.json"),

		Timezone:       getEnv("TIMEZONE", "Asia/Kolkata"),
		BusinessOpen:   getEnv("BUSINESS_OPEN", "10:00"),
		BusinessClose:  getEnv("BUSINESS_CLOSE", "21:00"),
		ClosedWeekdays: getEnv("CLOSED_WEEKDAYS", "0"),
		SlotDuration:   getEnvAsDuration("SLOT_DURATION", time.Hour),
		HorizonDays:    getEnvAsInt("HORIZON_DAYS", 7),

		ReplyDelay:     getEnvAsDuration("REPLY_DELAY", 5*time.Second),
		DialogStateTTL: getEnvAsDuration("DIALOG_STATE_TTL", 24*time.Hour),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),

		ReminderTick:    getEnvAsDuration("REMINDER_TICK", time.Minute),
		CountdownAt:     getEnv("COUNTDOWN_AT", "11:30"),
		NearTermLead:    getEnvAsDuration("NEAR_TERM_LEAD", 5*time.Hour),
		CountdownWindow: getEnvAsInt("COUNTDOWN_WINDOW_DAYS", 7),

		WhatsAppToken:       getEnv("WHATSAPP_TOKEN", ""),
		WhatsAppPhoneID:     getEnv("WHATSAPP_PHONE_ID", ""),
		WhatsAppVerifyToken: getEnv("WHATSAPP_VERIFY_TOKEN", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
