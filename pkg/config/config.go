package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Timezone  string          `mapstructure:"timezone"`
	Database  DatabaseConfig  `mapstructure:"database"`
	School    SchoolConfig    `mapstructure:"school"`
	Timetable TimetableConfig `mapstructure:"timetable"`
	Meal      MealConfig      `mapstructure:"meal"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	NEIS      NEISConfig      `mapstructure:"neis"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type SchoolConfig struct {
	Name            string `mapstructure:"name"`
	KoreaChartsCode string `mapstructure:"koreacharts_code"`
	SchoolInfoID    string `mapstructure:"schoolinfo_id"`
	NEISOfficeCode  string `mapstructure:"neis_office_code"`
	NEISSchoolCode  string `mapstructure:"neis_school_code"`
}

type TimetableConfig struct {
	Source     string `mapstructure:"source"`
	StaticFile string `mapstructure:"static_file"`
}

type MealConfig struct {
	Source  string `mapstructure:"source"`
	BaseURL string `mapstructure:"base_url"`
}

type CalendarConfig struct {
	Source  string `mapstructure:"source"`
	BaseURL string `mapstructure:"base_url"`
}

type NEISConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"

	SourceStatic      = "static"
	SourceNEIS        = "neis"
	SourceKoreaCharts = "koreacharts"
	SourceSchoolInfo  = "schoolinfo"
)

func parseDatabaseURL(dbURL string) (PostgresConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return PostgresConfig{}, err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return PostgresConfig{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return PostgresConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.development", false)
	v.SetDefault("timezone", "Asia/Seoul")

	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.sqlite.path", "users.db")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("database.redis.prefix", "schoolbot:user:")

	v.SetDefault("school.name", "대지고등학교")
	v.SetDefault("school.koreacharts_code", "B000012547")
	v.SetDefault("school.schoolinfo_id", "3515b280-22fd-4371-b105-999760a53e44")

	v.SetDefault("timetable.source", SourceStatic)
	v.SetDefault("timetable.static_file", "timetable.yaml")
	v.SetDefault("meal.source", SourceKoreaCharts)
	v.SetDefault("calendar.source", SourceSchoolInfo)

	v.SetDefault("http.timeout", 10*time.Second)

	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 20)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("openai.timeout", 3*time.Second)
}

// LoadConfig reads settings from the YAML file at path (skipped when path is
// empty), then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if port := v.GetInt("PORT"); port != 0 {
		config.Server.Port = port
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		pg, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		config.Database.Driver = DriverPostgres
		config.Database.Postgres = pg
	}

	if redisURL := v.GetString("REDIS_URL"); redisURL != "" {
		config.Database.Redis.URL = redisURL
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if apiKey := v.GetString("NEIS_API_KEY"); apiKey != "" {
		config.NEIS.APIKey = apiKey
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks that every enumerated setting has a known value.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}

	switch c.Database.Driver {
	case DriverMemory, DriverPostgres, DriverRedis:
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			errs = append(errs, errors.New("database.sqlite.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.Timetable.Source {
	case SourceStatic:
		if c.Timetable.StaticFile == "" {
			errs = append(errs, errors.New("timetable.static_file is required"))
		}
	case SourceNEIS:
	default:
		errs = append(errs, fmt.Errorf("unknown timetable.source %q", c.Timetable.Source))
	}

	switch c.Meal.Source {
	case SourceKoreaCharts, SourceNEIS:
	default:
		errs = append(errs, fmt.Errorf("unknown meal.source %q", c.Meal.Source))
	}

	if c.Calendar.Source != SourceSchoolInfo {
		errs = append(errs, fmt.Errorf("unknown calendar.source %q", c.Calendar.Source))
	}

	if c.Timetable.Source == SourceNEIS || c.Meal.Source == SourceNEIS {
		if c.School.NEISOfficeCode == "" || c.School.NEISSchoolCode == "" {
			errs = append(errs, errors.New("school.neis_office_code and school.neis_school_code are required for neis sources"))
		}
	}

	return errors.Join(errs...)
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
