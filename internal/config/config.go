package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Alturino/checkout/internal/common/validate"
	"github.com/Alturino/checkout/internal/log"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"        validate:"required"`
	SecretKey string `mapstructure:"secret_key" json:"-"           validate:"required,min=16"`
	LogPath   string `mapstructure:"log_path"   json:"log_path"`
	Port      int    `mapstructure:"port"       json:"port"        validate:"gt=0,lte=65535"`
}

type Cache struct {
	Host           string `mapstructure:"host"            json:"host"`
	Password       string `mapstructure:"password"        json:"-"`
	ReceiptChannel string `mapstructure:"receipt_channel" json:"receipt_channel" validate:"required"`
	Database       int    `mapstructure:"database"        json:"database"`
	Port           uint16 `mapstructure:"port"            json:"port"`
	Enabled        bool   `mapstructure:"enabled"         json:"enabled"`
}

type Otel struct {
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

type Merchant struct {
	ID                   string   `mapstructure:"id"                    json:"id"                    validate:"required"`
	DisplayName          string   `mapstructure:"display_name"          json:"display_name"          validate:"required"`
	CurrencyCode         string   `mapstructure:"currency_code"         json:"currency_code"         validate:"required,iso4217"`
	CountryCode          string   `mapstructure:"country_code"          json:"country_code"          validate:"required,iso3166_1_alpha2"`
	TaxRate              string   `mapstructure:"tax_rate"              json:"tax_rate"              validate:"required,rate"`
	SupportedNetworks    []string `mapstructure:"supported_networks"    json:"supported_networks"    validate:"required,min=1"`
	MerchantCapabilities []string `mapstructure:"merchant_capabilities" json:"merchant_capabilities" validate:"required,min=1"`
	CanMakePayments      bool     `mapstructure:"can_make_payments"     json:"can_make_payments"`
}

func (m Merchant) Tax() decimal.Decimal {
	return decimal.RequireFromString(m.TaxRate)
}

type Payment struct {
	Verifier          string        `mapstructure:"verifier"            json:"verifier"            validate:"oneof=contact processor"`
	ProcessorURL      string        `mapstructure:"processor_url"       json:"processor_url"       validate:"required_if=Verifier processor,omitempty,url"`
	AcceptedGivenName string        `mapstructure:"accepted_given_name" json:"accepted_given_name"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"         json:"session_ttl"         validate:"gt=0"`
	TokenTTL          time.Duration `mapstructure:"token_ttl"           json:"token_ttl"           validate:"gtefield=SessionTTL"`
}

type Config struct {
	Application Application `mapstructure:"application" json:"application"`
	Cache       Cache       `mapstructure:"cache"       json:"cache"`
	Otel        Otel        `mapstructure:"otel"        json:"otel"`
	Merchant    Merchant    `mapstructure:"merchant"    json:"merchant"`
	Payment     Payment     `mapstructure:"payment"     json:"payment"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("application.secret_key", "")
	v.SetDefault("application.log_path", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.database", 0)
	v.SetDefault("cache.receipt_channel", "payment.receipts")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)

	v.SetDefault("merchant.id", "merchant.com.itsuki.checkout")
	v.SetDefault("merchant.display_name", "Itsuki's World")
	v.SetDefault("merchant.currency_code", "USD")
	v.SetDefault("merchant.country_code", "US")
	v.SetDefault("merchant.tax_rate", "0.1")
	v.SetDefault("merchant.supported_networks", []string{"masterCard", "visa", "JCB", "suica", "nanaco"})
	v.SetDefault("merchant.merchant_capabilities", []string{"threeDSecure"})
	v.SetDefault("merchant.can_make_payments", true)

	v.SetDefault("payment.verifier", "contact")
	v.SetDefault("payment.processor_url", "")
	v.SetDefault("payment.accepted_given_name", "ITSUKI")
	v.SetDefault("payment.session_ttl", 30*time.Minute)
	v.SetDefault("payment.token_ttl", 24*time.Hour)
}

// LoadConfig reads <dir>/<filename>.yaml, overlays environment variables
// (merchant.tax_rate -> MERCHANT_TAX_RATE) and validates the result. A missing
// file falls back to defaults.
func LoadConfig(c context.Context, dir string, filename string) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config LoadConfig").
		Str("filename", filename).
		Logger()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.AddConfigPath(dir)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Info().Msg("reading config")
	err := v.ReadInConfig()
	if err != nil {
		notFound := viper.ConfigFileNotFoundError{}
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("failed reading config with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Warn().Msg("config file not found, using defaults and environment")
	}
	logger.Info().Msg("read config")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling config").Logger()
	logger.Info().Msg("unmarshaling config")
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		err = fmt.Errorf("failed unmarshaling config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("unmarshaled config")

	logger = logger.With().Str(log.KeyProcess, "validating config").Logger()
	logger.Info().Msg("validating config")
	if err := validate.New().StructCtx(c, cfg); err != nil {
		err = fmt.Errorf("failed validating config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Any(log.KeyConfig, cfg).Msg("validated config")

	return &cfg, nil
}

// InitConfig loads ./env/<filename>.yaml once per process and exits on failure.
func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Logger()

		cfg, err := LoadConfig(c, "./env", filename)
		if err != nil {
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = cfg
	})
	return config
}
