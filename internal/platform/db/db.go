package db

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const driverName = "mysql"

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpiryHours int    `yaml:"token_expiry_hours"`
}

type LendingConfig struct {
	LoanDays        int   `yaml:"loan_days"`
	RenewalDays     int   `yaml:"renewal_days"`
	MaxRenewals     int   `yaml:"max_renewals"`
	FineRatePerDay  int64 `yaml:"fine_rate_per_day"`
	ReservationDays int   `yaml:"reservation_days"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Config struct {
	Version string         `yaml:"version"`
	Mode    string         `yaml:"mode"`
	Server  ServerConfig   `yaml:"server"`
	DB      DatabaseConfig `yaml:"database"`
	Auth    AuthConfig     `yaml:"auth"`
	Lending LendingConfig  `yaml:"lending"`
	SMTP    SMTPConfig     `yaml:"smtp"`
}

// LoadConfig reads the yaml config and applies environment overrides.
// A .env file is honored when present so secrets stay out of the yaml.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("FINE_RATE_PER_DAY"); v != "" {
		if rate, err := strconv.ParseInt(v, 10, 64); err == nil && rate >= 0 {
			cfg.Lending.FineRatePerDay = rate
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Auth.TokenExpiryHours <= 0 {
		cfg.Auth.TokenExpiryHours = 168
	}
	if cfg.Lending.LoanDays <= 0 {
		cfg.Lending.LoanDays = 14
	}
	if cfg.Lending.RenewalDays <= 0 {
		cfg.Lending.RenewalDays = 7
	}
	if cfg.Lending.MaxRenewals <= 0 {
		cfg.Lending.MaxRenewals = 2
	}
	if cfg.Lending.FineRatePerDay <= 0 {
		cfg.Lending.FineRatePerDay = 1
	}
	if cfg.Lending.ReservationDays <= 0 {
		cfg.Lending.ReservationDays = 7
	}
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	// Connection pool sizing; keep the total below MySQL's max_connections.
	db.SetMaxOpenConns(80)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
