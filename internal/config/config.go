package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	Grading     GradingConfig
	Quiz        QuizConfig
	LLM         LLMConfig
	Enricher    EnricherConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	// Driver is "oracle" (pure Go go-ora) or "godror" (OCI).
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type LoggerConfig struct {
	Level string
	Env   string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type GradingConfig struct {
	SentenceThreshold  float64
	WordThreshold      float64
	MinSubstringLength int
}

type QuizConfig struct {
	QuestionsPerSession int
	SessionTTL          time.Duration
	DefaultPassingScore int
}

type LLMConfig struct {
	ServerURL string
	Model     string
	Timeout   time.Duration
}

type EnricherConfig struct {
	TargetTotal int
	Concurrency int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")

	v.SetDefault("db.driver", "oracle")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 1521)
	v.SetDefault("db.name", "FREEPDB1")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 25)
	v.SetDefault("db.conn_max_lifetime", "5m")

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("logger.level", "info")

	v.SetDefault("jwt.access_token_ttl", "15m")
	v.SetDefault("jwt.refresh_token_ttl", "168h")

	v.SetDefault("grading.sentence_threshold", 0.65)
	v.SetDefault("grading.word_threshold", 0.80)
	v.SetDefault("grading.min_substring_length", 2)

	v.SetDefault("quiz.questions_per_session", 5)
	v.SetDefault("quiz.session_ttl", "2h")
	v.SetDefault("quiz.default_passing_score", 3)

	v.SetDefault("llm.server_url", "http://localhost:11434")
	v.SetDefault("llm.model", "qwen3:8b")
	v.SetDefault("llm.timeout", "60s")

	v.SetDefault("enricher.target_total", 4)
	v.SetDefault("enricher.concurrency", 4)
}

// LoadConfig reads config.yaml from the usual locations. A missing config
// file is not an error; defaults and environment variables still apply.
func LoadConfig() (*Config, error) {
	if os.Getenv("ENV") == "test" {
		return LoadConfigFrom("../../config", "../../")
	}
	return LoadConfigFrom(".", "./config")
}

// LoadConfigFrom reads config.yaml from the given directories. Environment
// variables override file values, with "." in keys replaced by "_"
// (DB_HOST overrides db.host). A .env file in the working directory is loaded first.
func LoadConfigFrom(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Log the config file being used
	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	cfg := &Config{
		Env: v.GetString("env"),
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		DB: DBConfig{
			Driver:          v.GetString("db.driver"),
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			DBName:          v.GetString("db.name"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("env"),
		},
		JWT: JWTConfig{
			SecretKey:       v.GetString("jwt.secret_key"),
			AccessTokenTTL:  v.GetDuration("jwt.access_token_ttl"),
			RefreshTokenTTL: v.GetDuration("jwt.refresh_token_ttl"),
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     v.GetString("google_oauth.client_id"),
			ClientSecret: v.GetString("google_oauth.client_secret"),
			RedirectURL:  v.GetString("google_oauth.redirect_url"),
		},
		Grading: GradingConfig{
			SentenceThreshold:  v.GetFloat64("grading.sentence_threshold"),
			WordThreshold:      v.GetFloat64("grading.word_threshold"),
			MinSubstringLength: v.GetInt("grading.min_substring_length"),
		},
		Quiz: QuizConfig{
			QuestionsPerSession: v.GetInt("quiz.questions_per_session"),
			SessionTTL:          v.GetDuration("quiz.session_ttl"),
			DefaultPassingScore: v.GetInt("quiz.default_passing_score"),
		},
		LLM: LLMConfig{
			ServerURL: v.GetString("llm.server_url"),
			Model:     v.GetString("llm.model"),
			Timeout:   v.GetDuration("llm.timeout"),
		},
		Enricher: EnricherConfig{
			TargetTotal: v.GetInt("enricher.target_total"),
			Concurrency: v.GetInt("enricher.concurrency"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "oracle", "godror":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.Grading.SentenceThreshold <= 0 || c.Grading.SentenceThreshold > 1 {
		return fmt.Errorf("grading.sentence_threshold must be in (0, 1], got %v", c.Grading.SentenceThreshold)
	}
	if c.Grading.WordThreshold <= 0 || c.Grading.WordThreshold > 1 {
		return fmt.Errorf("grading.word_threshold must be in (0, 1], got %v", c.Grading.WordThreshold)
	}
	if c.Quiz.QuestionsPerSession <= 0 {
		return fmt.Errorf("quiz.questions_per_session must be positive")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
