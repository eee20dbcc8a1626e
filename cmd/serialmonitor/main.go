// Command serialmonitor scans for serial devices and prints the lines a
// device sends.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Station-Manager/serialcom"
)

const reconnectInterval = 500 * time.Millisecond

type app struct {
	v      *viper.Viper
	cfg    *AppConfig
	log    zerolog.Logger
	closer io.Closer

	configFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "serialmonitor",
		Short:         "scan for serial devices and print what they send",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.shutdown(os.Stderr)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./serialmonitor.yaml if present)")
	pf.String("log-level", "info", "log level (trace, debug, info, warn, error, disabled)")
	pf.String("log-file", "", "also write JSON logs to this rotating file")
	pf.String("pattern", serialcom.DefaultPortPattern, "port name pattern with one %d verb")
	_ = a.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.file", pf.Lookup("log-file"))
	_ = a.v.BindPFlag("serial.port_pattern", pf.Lookup("pattern"))

	rootCmd.AddCommand(a.scanCmd(), a.portsCmd(), a.monitorCmd())
	return rootCmd
}

func (a *app) init() error {
	cfg, err := loadConfig(a.v, a.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	a.cfg = cfg

	a.log, a.closer, err = newLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// shutdown closes the log file, reporting a failed flush on w.
func (a *app) shutdown(w io.Writer) {
	if a.closer == nil {
		return
	}
	if err := a.closer.Close(); err != nil {
		fmt.Fprintf(w, "closing log file: %v\n", err)
	}
	a.closer = nil
}

func (a *app) newConn(opts ...serialcom.Option) (*serialcom.Conn, error) {
	opts = append(opts, serialcom.WithLogger(a.log.With().Str("component", "serialcom").Logger()))
	return serialcom.New(a.cfg.Serial, opts...)
}

func (a *app) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "probe every port number in the scan range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newConn()
			if err != nil {
				return a.fail(err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ports, err := a.scan(ctx, cmd.OutOrStdout(), c)
			if err != nil && !errors.Is(err, context.Canceled) {
				return a.fail(err)
			}
			a.log.Debug().Strs("ports", ports).Msg("scan done")
			return nil
		},
	}
}

func (a *app) scan(ctx context.Context, out io.Writer, c *serialcom.Conn) ([]string, error) {
	fmt.Fprintln(out, "Scanning COM ports...")
	ports, err := c.ScanPorts(ctx)
	fmt.Fprintf(out, "%d COM ports available:\n", len(ports))
	fmt.Fprintln(out, strings.Join(ports, "\t\t"))
	return ports, err
}

func (a *app) portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "list serial ports reported by the operating system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ports, err := serialcom.ListSystemPorts()
			if err != nil {
				return a.fail(err)
			}
			out := cmd.OutOrStdout()
			if len(ports) == 0 {
				fmt.Fprintln(out, "No serial ports found")
				return nil
			}
			for _, p := range ports {
				if p.IsUSB {
					fmt.Fprintf(out, "%s\tUSB %s:%s\t%s\n", p.Name, p.VID, p.PID, p.SerialNumber)
				} else {
					fmt.Fprintln(out, p.Name)
				}
			}
			return nil
		},
	}
}

func (a *app) monitorCmd() *cobra.Command {
	var portNum int
	var baud int
	var skipScan bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "connect to a port and print every line it sends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := a.newConn()
			if err != nil {
				return a.fail(err)
			}
			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())

			if !skipScan {
				if _, err := a.scan(ctx, out, c); err != nil {
					return a.fail(err)
				}
			}

			if cmd.Flags().Changed("port") {
				c.SetPort(c.PortName(portNum))
			} else if c.Port() == "" {
				n, err := prompt(in, out, "Enter COM port number to connect on:")
				if err != nil {
					return a.fail(err)
				}
				c.SetPort(c.PortName(n))
			}

			if cmd.Flags().Changed("baud") {
				c.SetBaudRate(baud)
			} else if a.cfg.Serial.BaudRate == 0 {
				n, err := prompt(in, out, "Enter baud rate to connect with:")
				if err != nil {
					return a.fail(err)
				}
				c.SetBaudRate(n)
			}

			return a.monitor(ctx, out, c)
		},
	}

	cmd.Flags().IntVarP(&portNum, "port", "p", 0, "port number, rendered with --pattern")
	cmd.Flags().IntVarP(&baud, "baud", "b", 0, "baud rate")
	cmd.Flags().BoolVar(&skipScan, "no-scan", false, "skip the initial port scan")
	return cmd
}

// monitor connects, retrying until the device appears, and prints each line.
// A read failure ends the command with the recorded error text.
func (a *app) monitor(ctx context.Context, out io.Writer, c *serialcom.Conn) error {
	go func() {
		<-ctx.Done()
		c.Disconnect()
	}()
	defer c.Disconnect()

	for {
		fmt.Fprintf(out, "Waiting for connection on: %s...\n", c.Port())
		for {
			if err := c.Connect(); err == nil {
				break
			}
			a.log.Debug().Str("port", c.Port()).Str("error", c.LastError()).Msg("device not ready")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(reconnectInterval):
			}
		}
		fmt.Fprintf(out, "Connected on %s, attempting to read...\n\n", c.Port())

		for c.IsConnected() {
			line, err := c.ReadLine(ctx)
			if err != nil {
				if ctx.Err() != nil {
					fmt.Fprintln(out, "\nDisconnecting and exiting.")
					return nil
				}
				fmt.Fprintf(out, "\nError encountered: %s\n", c.LastError())
				return err
			}
			fmt.Fprint(out, line)
		}
	}
}

func prompt(in *bufio.Scanner, out io.Writer, question string) (int, error) {
	fmt.Fprintln(out, question)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", in.Text())
	}
	return n, nil
}

func (a *app) fail(err error) error {
	a.log.Error().Err(err).Msg("serialmonitor failed")
	return err
}
