package main

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/Station-Manager/serialcom"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := loadConfig(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, serialcom.DefaultPortPattern, cfg.Serial.PortPattern)
	require.Equal(t, 0, cfg.Serial.BaudRate)
	require.Equal(t, 20, cfg.Serial.ScanLast)
	require.Equal(t, serialcom.DefaultTimeouts(), cfg.Serial.Timeouts)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "monitor.yaml")
	yaml := `
serial:
  port_name: /dev/ttyACM0
  baud_rate: 115200
  port_pattern: /dev/ttyACM%d
  scan_last: 4
  timeouts:
    read_total_constant: 250ms
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0o644))
	t.Setenv("SERIALCOM_SERIAL_BAUD_RATE", "57600")

	cfg, err := loadConfig(viper.New(), file)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", cfg.Serial.PortName)
	require.Equal(t, 57600, cfg.Serial.BaudRate)
	require.Equal(t, "/dev/ttyACM%d", cfg.Serial.PortPattern)
	require.Equal(t, 4, cfg.Serial.ScanLast)
	require.Equal(t, 250*time.Millisecond, cfg.Serial.Timeouts.ReadTotalConstant)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("SERIALCOM_SERIAL_PORT_PATTERN", "COM")
	_, err := loadConfig(viper.New(), "")
	require.ErrorIs(t, err, serialcom.ErrInvalidConfig)

	t.Setenv("SERIALCOM_SERIAL_PORT_PATTERN", "COM%d")
	t.Setenv("SERIALCOM_LOGGING_LEVEL", "chatty")
	_, err = loadConfig(viper.New(), "")
	require.Error(t, err)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewScanner(strings.NewReader(" 7 \nabc\n"))

	n, err := prompt(in, &out, "Enter COM port number to connect on:")
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, "Enter COM port number to connect on:\n", out.String())

	_, err = prompt(in, &out, "Enter baud rate to connect with:")
	require.Error(t, err)

	_, err = prompt(in, &out, "again:")
	require.Error(t, err)
}

type failingCloser struct{ calls int }

func (c *failingCloser) Close() error {
	c.calls++
	return errors.New("disk full")
}

func TestShutdownReportsCloseError(t *testing.T) {
	fc := &failingCloser{}
	a := &app{closer: fc}

	var stderr bytes.Buffer
	a.shutdown(&stderr)
	require.Equal(t, 1, fc.calls)
	require.Contains(t, stderr.String(), "closing log file: disk full")

	// a second shutdown does not close again
	a.shutdown(&stderr)
	require.Equal(t, 1, fc.calls)
}

func TestNewLoggerWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "monitor.log")

	logger, closer, err := newLogger(LoggingConfig{Level: "info", File: file, MaxSize: 1})
	require.NoError(t, err)
	require.NotNil(t, closer)

	logger.Info().Str("port", "COM3").Msg("connected")
	logger.Debug().Msg("filtered")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), `"port":"COM3"`)
	require.NotContains(t, string(data), "filtered")

	_, _, err = newLogger(LoggingConfig{Level: "loud"})
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
