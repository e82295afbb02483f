// Package config assembles the application configuration from defaults,
// an optional JSON config file, command line flags and the environment,
// in that order of precedence (later sources win).
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service.
type Config struct {
	RunAddr                   string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	LogLevel                  string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	DBFileName                string        `env:"FILE_STORAGE_PATH" json:"file_storage_path" validate:"filepath"`
	DatabaseDSN               string        `env:"DATABASE_DSN" json:"database_dsn"`
	DBConnectionTimeout       time.Duration `env:"DB_CONNECTION_TIMEOUT" json:"db_connection_timeout"`
	MigrationsDir             string        `env:"MIGRATIONS_DIR" json:"migrations_dir"`
	AuthTokenSigningSecretKey string        `env:"AUTH_TOKEN_SIGNING_SECRET_KEY" json:"auth_token_signing_secret_key"`
	AuthTokenTTL              time.Duration `env:"AUTH_TOKEN_TTL" json:"auth_token_ttl"`
	TrustedSubnet             string        `env:"TRUSTED_SUBNET" json:"trusted_subnet" validate:"omitempty,cidr"`
	ConfigFile                string        `env:"CONFIG" json:"-"`
}

var defaultConfig = Config{
	RunAddr:                   ":8080",
	LogLevel:                  "info",
	DBFileName:                "",
	DatabaseDSN:               "",
	DBConnectionTimeout:       10 * time.Second,
	MigrationsDir:             "migrations",
	AuthTokenSigningSecretKey: "aW50ZXJuaHViLWRldi1zaWduaW5nLWtleQ==",
	AuthTokenTTL:              24 * time.Hour,
	TrustedSubnet:             "",
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption configures New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing skips command line parsing. Used by tests.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

func applyDefaults(target *Config, defaults Config) {
	*target = defaults
}

// applyOverrides copies every non-zero field of source over target.
func applyOverrides(target *Config, source Config) {
	if source.RunAddr != "" {
		target.RunAddr = source.RunAddr
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}
	if source.DBFileName != "" {
		target.DBFileName = source.DBFileName
	}
	if source.DatabaseDSN != "" {
		target.DatabaseDSN = source.DatabaseDSN
	}
	if source.DBConnectionTimeout != 0 {
		target.DBConnectionTimeout = source.DBConnectionTimeout
	}
	if source.MigrationsDir != "" {
		target.MigrationsDir = source.MigrationsDir
	}
	if source.AuthTokenSigningSecretKey != "" {
		target.AuthTokenSigningSecretKey = source.AuthTokenSigningSecretKey
	}
	if source.AuthTokenTTL != 0 {
		target.AuthTokenTTL = source.AuthTokenTTL
	}
	if source.TrustedSubnet != "" {
		target.TrustedSubnet = source.TrustedSubnet
	}
	if source.ConfigFile != "" {
		target.ConfigFile = source.ConfigFile
	}
}

func loadJSONConfig(fileName string, target *Config) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}

	var fromFile Config
	if err := json.Unmarshal(data, &fromFile); err != nil {
		return err
	}
	applyOverrides(target, fromFile)

	return nil
}

// New builds the configuration. Precedence, lowest to highest: built-in
// defaults, the JSON config file, command line flags, environment variables.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	var valuesFromFlags Config
	if !options.disableFlagsParsing {
		flag.StringVar(&valuesFromFlags.RunAddr, "a", "", "address and port to run server")
		flag.StringVar(&valuesFromFlags.LogLevel, "l", "", "logger level")
		flag.StringVar(&valuesFromFlags.DBFileName, "f", "", "JSON file name with database")
		flag.StringVar(&valuesFromFlags.DatabaseDSN, "d", "", "a string with the database connection details")
		flag.StringVar(&valuesFromFlags.TrustedSubnet, "t", "", "trusted subnet for the internal stats endpoint, in CIDR notation")
		flag.StringVar(&valuesFromFlags.ConfigFile, "c", "", "path to a JSON config file")
		flag.Parse()
	}

	var valuesFromEnv Config
	err = env.Parse(&valuesFromEnv)
	if err != nil {
		return nil, err
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	configFile := valuesFromFlags.ConfigFile
	if valuesFromEnv.ConfigFile != "" {
		configFile = valuesFromEnv.ConfigFile
	}
	if configFile != "" {
		if err := loadJSONConfig(configFile, values); err != nil {
			return nil, err
		}
	}

	applyOverrides(values, valuesFromFlags)
	applyOverrides(values, valuesFromEnv)

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
