package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Firebase    FirebaseConfig    `mapstructure:"firebase"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Security    SecurityConfig    `mapstructure:"security"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Preferences PreferencesConfig `mapstructure:"preferences"`
	Files       FilesConfig       `mapstructure:"files"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// FirebaseConfig points at the Firebase project backing Quick-Share.
type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Collection      string `mapstructure:"collection"`
}

type StorageConfig struct {
	Bucket    string `mapstructure:"bucket"`
	ChunkSize int    `mapstructure:"chunk_size"`
}

// AuthConfig selects how bearer tokens are verified: "firebase", "hmac" or "none".
type AuthConfig struct {
	Mode      string        `mapstructure:"mode"`
	Secret    string        `mapstructure:"secret"`
	Issuer    string        `mapstructure:"issuer"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

type SecurityConfig struct {
	CORSAllowedOrigins string  `mapstructure:"cors_allowed_origins"`
	UploadRateLimit    float64 `mapstructure:"upload_rate_limit"`
	UploadRateBurst    int     `mapstructure:"upload_rate_burst"`
	MaxUploadBytes     int64   `mapstructure:"max_upload_bytes"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type PreferencesConfig struct {
	Path string `mapstructure:"path"`
}

type FilesConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from defaults, an optional config file, .env and the environment.
func Load(configFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "L.A.R.R.E.")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("firebase.collection", "quickshare")

	v.SetDefault("storage.chunk_size", 256*1024)

	v.SetDefault("auth.mode", "none")
	v.SetDefault("auth.issuer", "larre")
	v.SetDefault("auth.expires_in", "1h")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output", "stdout")

	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.upload_rate_limit", 2)
	v.SetDefault("security.upload_rate_burst", 5)
	v.SetDefault("security.max_upload_bytes", 512<<20)

	v.SetDefault("metrics.enabled", true)

	v.SetDefault("preferences.path", "larre-preferences.db")
	v.SetDefault("files.dir", "uploads")
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("app.environment", "APP_ENVIRONMENT")

	_ = v.BindEnv("server.host", "SERVER_HOST")
	_ = v.BindEnv("server.port", "PORT")

	_ = v.BindEnv("firebase.project_id", "FIREBASE_PROJECT_ID")
	_ = v.BindEnv("firebase.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv("firebase.collection", "QUICKSHARE_COLLECTION")

	_ = v.BindEnv("storage.bucket", "FIREBASE_STORAGE_BUCKET")
	_ = v.BindEnv("storage.chunk_size", "STORAGE_CHUNK_SIZE")

	_ = v.BindEnv("auth.mode", "AUTH_MODE")
	_ = v.BindEnv("auth.secret", "JWT_SECRET_KEY")
	_ = v.BindEnv("auth.issuer", "JWT_ISSUER")
	_ = v.BindEnv("auth.expires_in", "JWT_EXPIRES_IN")

	_ = v.BindEnv("logger.level", "LOG_LEVEL")
	_ = v.BindEnv("logger.format", "LOG_FORMAT")
	_ = v.BindEnv("logger.output", "LOG_OUTPUT")
	_ = v.BindEnv("logger.filename", "LOG_FILE")

	_ = v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("security.upload_rate_limit", "UPLOAD_RATE_LIMIT")
	_ = v.BindEnv("security.upload_rate_burst", "UPLOAD_RATE_BURST")
	_ = v.BindEnv("security.max_upload_bytes", "MAX_UPLOAD_BYTES")

	_ = v.BindEnv("metrics.enabled", "ENABLE_METRICS")

	_ = v.BindEnv("preferences.path", "PREFERENCES_DB")
	_ = v.BindEnv("files.dir", "FILES_DIR")
}

// Validate checks the settings the server cannot start without.
func (cfg *Config) Validate() error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	switch cfg.Auth.Mode {
	case "none", "firebase":
	case "hmac":
		if cfg.Auth.Secret == "" {
			return fmt.Errorf("auth.secret is required when auth.mode is hmac")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}

	if cfg.Firebase.Collection == "" {
		return fmt.Errorf("firebase collection is required")
	}
	if cfg.Preferences.Path == "" {
		return fmt.Errorf("preferences path is required")
	}

	return nil
}

// Addr returns the listen address for the HTTP server
func (cfg *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// QuickShareEnabled reports whether enough Firebase settings are present to reach the backend.
func (cfg *Config) QuickShareEnabled() bool {
	return cfg.Firebase.ProjectID != "" && cfg.Storage.Bucket != ""
}

func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
