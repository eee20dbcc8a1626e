package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Station-Manager/serialcom"
)

// AppConfig is the file/environment layout read by serialmonitor.
type AppConfig struct {
	Serial  serialcom.Config `mapstructure:"serial"`
	Logging LoggingConfig    `mapstructure:"logging"`
}

// loadConfig merges defaults, an optional config file and SERIALCOM_*
// environment variables. Flags are bound onto v by the caller.
func loadConfig(v *viper.Viper, file string) (*AppConfig, error) {
	setDefaults(v)

	v.SetEnvPrefix("SERIALCOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		v.SetConfigName("serialmonitor")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	check := cfg.Serial
	if check.BaudRate == 0 {
		check.BaudRate = serialcom.DefaultBaudRate.Int()
	}
	if err := serialcom.ValidateConfig(&check); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("invalid logging config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := serialcom.DefaultConfig()

	v.SetDefault("serial.port_name", "")
	v.SetDefault("serial.baud_rate", 0) // 0 means ask on stdin
	v.SetDefault("serial.port_pattern", def.PortPattern)
	v.SetDefault("serial.scan_first", def.ScanFirst)
	v.SetDefault("serial.scan_last", def.ScanLast)
	v.SetDefault("serial.timeouts.read_interval", def.Timeouts.ReadInterval)
	v.SetDefault("serial.timeouts.read_total_constant", def.Timeouts.ReadTotalConstant)
	v.SetDefault("serial.timeouts.read_total_multiplier", def.Timeouts.ReadTotalMultiplier)
	v.SetDefault("serial.timeouts.write_total_constant", def.Timeouts.WriteTotalConstant)
	v.SetDefault("serial.timeouts.write_total_multiplier", def.Timeouts.WriteTotalMultiplier)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)
}
