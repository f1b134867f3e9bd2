package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	// Env is "dev" (default) or "prod". When "prod", SESSION_SECRET must be set.
	Env string

	// DataDir holds every flat file: users.csv, study_plan.json and the artifact directories.
	DataDir string

	// UserStore is "file" (CSV under DataDir, default) or "postgres".
	UserStore string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 10).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 2).
	DBMaxIdleConns int

	// SessionSecret signs the session cookie. When empty a random secret is generated at
	// startup, so sessions do not survive a restart.
	SessionSecret string
	// SessionHours is the session lifetime; 0 means the session lasts until logout.
	SessionHours int

	// PasswordMode is "plain" (stored as typed, default) or "bcrypt".
	PasswordMode string

	// CSRFKey enables CSRF protection on every form when set (32 bytes).
	CSRFKey string

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// MaxUploadMB caps request bodies on upload routes.
	MaxUploadMB int

	STTURL            string
	STTTimeoutSeconds int

	// FeatureExtractorURL points at a remote image feature extractor. Empty uses the built-in one.
	FeatureExtractorURL string
	// FeatureExtractorDim is the length of the vectors the remote extractor returns.
	FeatureExtractorDim int

	// AnswerURL points at a remote answer service for the doubt solver. Empty uses the simulated answerer.
	AnswerURL string

	// MailProvider is "console" (default) or "sendgrid".
	MailProvider   string
	SendGridAPIKey string
	MailFrom       string
	MailAppName    string

	// ReminderRecipient receives study reminders. Empty disables the reminder scheduler.
	ReminderRecipient   string
	ReminderLeadMinutes int
	ReminderSpec        string

	// ExportS3Bucket mirrors every exported zip archive to S3 when set.
	ExportS3Bucket string
	ExportS3Prefix string
	S3Region       string
	S3Endpoint     string

	// WatchUsers caches the user file and reloads it on change.
	WatchUsers bool

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP. Only set it
	// behind a reverse proxy that overwrites those headers.
	TrustProxy bool
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "3000"),
		Env:  getEnv("ENV", "dev"),

		DataDir:   getEnv("DATA_DIR", "data"),
		UserStore: getEnv("USER_STORE", "file"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "studybuddy"),
		DBUser: getEnv("DB_USER", "studybuddy"),
		DBPass: getEnv("DB_PASS", "studybuddy"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 2),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionHours:  getEnvInt("SESSION_HOURS", 0),
		PasswordMode:  getEnv("PASSWORD_MODE", "plain"),
		CSRFKey:       getEnv("CSRF_KEY", ""),

		// Optional TLS configuration for HTTPS.
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat:   getEnv("LOG_FORMAT", "text"),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 20),

		STTURL:            getEnv("STT_URL", ""),
		STTTimeoutSeconds: getEnvInt("STT_TIMEOUT_SECONDS", 30),

		FeatureExtractorURL: getEnv("FEATURE_EXTRACTOR_URL", ""),
		FeatureExtractorDim: getEnvInt("FEATURE_EXTRACTOR_DIM", 1280),
		AnswerURL:           getEnv("ANSWER_URL", ""),

		MailProvider:   getEnv("MAIL_PROVIDER", "console"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", "noreply@studybuddy.local"),
		MailAppName:    getEnv("MAIL_APP_NAME", "Study Buddy"),

		ReminderRecipient:   getEnv("REMINDER_RECIPIENT", ""),
		ReminderLeadMinutes: getEnvInt("REMINDER_LEAD_MINUTES", 5),
		ReminderSpec:        getEnv("REMINDER_SPEC", "@every 1m"),

		ExportS3Bucket: getEnv("EXPORT_S3_BUCKET", ""),
		ExportS3Prefix: getEnv("EXPORT_S3_PREFIX", "exports/"),
		S3Region:       getEnv("S3_REGION", ""),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),

		WatchUsers: getEnvBool("WATCH_USERS", true),
		TrustProxy: getEnvBool("TRUST_PROXY", false),
	}
}

// Path joins elem under DataDir.
func (c Config) Path(elem ...string) string {
	return filepath.Join(append([]string{c.DataDir}, elem...)...)
}

// TLSEnabled reports whether both certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
