package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/solobooks/solobooks/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig
	Billing    BillingConfig `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

// BillingConfig carries the tenant-independent billing defaults
type BillingConfig struct {
	// PaymentTermsDays is the default gap between issue date and due date
	// when an invoice is finalized without an explicit due date
	PaymentTermsDays int `validate:"required,gt=0"`
	// InvoiceNumberPrefix and QuoteNumberPrefix seed a tenant's number
	// sequence the first time it finalizes a document of that type
	InvoiceNumberPrefix string `validate:"required"`
	QuoteNumberPrefix   string `validate:"required"`
	// NumberPadding is the zero-pad width for newly created sequences
	NumberPadding int `validate:"required,gte=2,lte=10"`
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/solobooks")

	v.SetEnvPrefix("SOLOBOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeAPI))
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("billing.paymenttermsdays", 30)
	v.SetDefault("billing.invoicenumberprefix", "INV-")
	v.SetDefault("billing.quotenumberprefix", "QTE-")
	v.SetDefault("billing.numberpadding", 4)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development.
// This is useful for running scripts or tests without a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelInfo},
		Billing: BillingConfig{
			PaymentTermsDays:    30,
			InvoiceNumberPrefix: "INV-",
			QuoteNumberPrefix:   "QTE-",
			NumberPadding:       4,
		},
	}
}
