package serialcom

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultPortPattern renders a port number as a Win32 device path.
	DefaultPortPattern = `\\.\COM%d`

	DefaultScanFirst = 0
	DefaultScanLast  = 20
)

// Config holds configuration for a Conn.
type Config struct {
	// PortName is the device to connect to, e.g. \\.\COM3 or /dev/ttyACM0.
	// It may be empty when the Conn is only used for scanning.
	PortName string `mapstructure:"port_name"`

	BaudRate int `mapstructure:"baud_rate" validate:"gt=0"`

	Timeouts Timeouts `mapstructure:"timeouts"`

	// PortPattern is a fmt pattern with one %d verb used to render scan candidates.
	PortPattern string `mapstructure:"port_pattern" validate:"required,contains=%d"`

	ScanFirst int `mapstructure:"scan_first" validate:"gte=0"`
	ScanLast  int `mapstructure:"scan_last" validate:"gtefield=ScanFirst"`
}

// DefaultConfig returns a Config with every field at its default.
func DefaultConfig() Config {
	return Config{
		BaudRate:    DefaultBaudRate.Int(),
		Timeouts:    DefaultTimeouts(),
		PortPattern: DefaultPortPattern,
		ScanFirst:   DefaultScanFirst,
		ScanLast:    DefaultScanLast,
	}
}

// withDefaults fills unset fields. The scan range is taken as given: a zero
// range probes port 0 only. DefaultConfig carries the 0..20 range.
func (c Config) withDefaults() Config {
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate.Int()
	}
	if c.Timeouts == (Timeouts{}) {
		c.Timeouts = DefaultTimeouts()
	}
	if c.PortPattern == "" {
		c.PortPattern = DefaultPortPattern
	}
	return c
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateConfig validates configuration parameters.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	err := configValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "BaudRate":
		return fmt.Sprintf("invalid baud rate %v", fe.Value())
	case "PortPattern":
		if fe.Tag() == "required" {
			return "port pattern cannot be empty"
		}
		return fmt.Sprintf("port pattern %q must contain %%d", fe.Value())
	case "ScanFirst":
		return fmt.Sprintf("scan range cannot start below zero: %v", fe.Value())
	case "ScanLast":
		return fmt.Sprintf("scan range end %v is before its start", fe.Value())
	}
	if strings.HasPrefix(fe.Namespace(), "Config.Timeouts.") {
		return fmt.Sprintf("timeout %s cannot be negative: %v", fe.Field(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
}
