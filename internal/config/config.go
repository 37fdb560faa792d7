package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig `envPrefix:"DB_"`
	Logger   LoggerConfig   `envPrefix:"LOG_"`
	Approval ApprovalConfig `envPrefix:"APPROVAL_"`
	Loan     LoanConfig     `envPrefix:"LOAN_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
}

type DatabaseConfig struct {
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         string `env:"PORT" envDefault:"5432"`
	User         string `env:"USER" envDefault:"postgres"`
	Password     string `env:"PASSWORD" envDefault:"postgres"`
	Database     string `env:"NAME" envDefault:"ledger"`
	SSLMode      string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"5"`
}

type LoggerConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"` // json or text
}

// ApprovalConfig holds the thresholds driving the transaction approval chain.
type ApprovalConfig struct {
	SmallTransactionThreshold decimal.Decimal `env:"SMALL_THRESHOLD" envDefault:"1000"`
	HighRiskThreshold         decimal.Decimal `env:"HIGH_RISK_THRESHOLD" envDefault:"10000"`
	RiskScoreThreshold        int             `env:"RISK_SCORE_THRESHOLD" envDefault:"70"`
}

// LoanConfig holds the defaults applied to new loan accounts when the caller
// does not specify their own terms.
type LoanConfig struct {
	DefaultInterestRate decimal.Decimal `env:"DEFAULT_INTEREST_RATE" envDefault:"0.05"`
	DefaultMinPayment   decimal.Decimal `env:"DEFAULT_MIN_PAYMENT" envDefault:"100"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment config")
	}
	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}
