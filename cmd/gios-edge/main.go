package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/ghalamif/giosaqi"
	"github.com/ghalamif/giosaqi/internal/logger"
)

const defaultConfigPath = "./data/config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stations":
		err = stationsCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		logger.Error("command_failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func runCommand(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", defaultConfigPath, "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	flow, err := giosaqi.Conf(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", defaultConfigPath, "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := giosaqi.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	fmt.Printf("config %s looks good: %d station(s), refresh every %s\n",
		*cfgPath, len(cfg.Stations), cfg.GIOS.ScanInterval)
	return nil
}

// stationsCommand discovers the configured stations once, refreshes every
// sensor and prints the resulting entity states.
func stationsCommand(args []string) error {
	fs := pflag.NewFlagSet("stations", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", defaultConfigPath, "Path to configuration file")
	timeout := fs.Duration("timeout", time.Minute, "Overall deadline for discovery and refresh")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := giosaqi.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	client := giosaqi.NewClient(cfg.GIOS)
	sensors, err := giosaqi.Discover(ctx, client, cfg.Stations, nil)
	if err != nil {
		return err
	}
	if err := giosaqi.RefreshAll(ctx, sensors, cfg.GIOS.Concurrency); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATE\tUNIT\tDATE")
	for _, s := range sensors {
		uid, _ := s.UniqueID()
		date := ""
		if r := s.Reading(); r != nil {
			date = r.Date
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", uid, s.Name(), s.StateString(), s.Unit(), date)
	}
	return w.Flush()
}

func statsCommand(args []string) error {
	fs := pflag.NewFlagSet("stats", pflag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/sensors", "Runtime sensors endpoint")
	interval := fs.Duration("interval", 5*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: *interval}
	fmt.Printf("Polling %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printSensorSnapshot(ctx, client, *url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printSensorSnapshot(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	var states []giosaqi.EntityState
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return fmt.Errorf("decode sensors: %w", err)
	}

	fmt.Printf("[%s] %d sensor(s)\n", time.Now().Format(time.RFC3339), len(states))
	for _, st := range states {
		fmt.Printf("  %-40s %8s %s\n", st.Name, st.State, st.Unit)
	}
	return nil
}

func printUsage() {
	fmt.Printf(`GIOS air quality edge CLI

Usage:
  gios-edge <command> [flags]

Commands:
  run        Start the runtime using the provided config
  validate   Load and validate a config file without starting the runtime
  stations   Discover the configured stations once and print sensor states
  stats      Poll the /sensors endpoint of a running instance

Examples:
  gios-edge run --config ./data/config.yaml
  gios-edge validate -c ./data/config.yaml
  gios-edge stations -c ./data/config.yaml --timeout 30s
  gios-edge stats --url http://localhost:9100/sensors --interval 10s
`)
}
