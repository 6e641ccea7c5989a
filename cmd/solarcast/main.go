// Command solarcast forecasts monthly solar irradiance features of a location read from an
// NSRDB sqlite database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	forecaster "github.com/gamyers/solar-697"
	"github.com/gamyers/solar-697/store"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type app struct {
	configPath  string
	database    string
	logLevel    string
	profileMode string
	metricsFile string
	format      string

	cfg      *Config
	registry *prometheus.Registry
	profiler interface{ Stop() }
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "solarcast",
		Short:         "Forecast monthly solar irradiance by location",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Fits a Fourier regression ARIMA and a seasonal ARIMA on the monthly history of a
location, validates both against the held out tail and forecasts past the end of the data.`,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.database, "database", "", "sqlite database path, overrides the config")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error, overrides the config")
	rootCmd.PersistentFlags().StringVar(&a.profileMode, "profile", "", "write a cpu or mem profile to the working directory")
	rootCmd.PersistentFlags().StringVar(&a.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
	rootCmd.PersistentFlags().StringVarP(&a.format, "format", "f", formatText, "output format, text or json")

	rootCmd.AddCommand(a.forecastCmd())
	rootCmd.AddCommand(a.trendsCmd())
	rootCmd.AddCommand(a.describeCmd())
	rootCmd.AddCommand(a.searchCmd())
	rootCmd.AddCommand(a.featuresCmd())
	rootCmd.AddCommand(a.zipcodesCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.database != "" {
		cfg.Database = a.database
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	if a.format != formatText && a.format != formatJSON {
		return fmt.Errorf("unknown output format %q", a.format)
	}

	switch a.profileMode {
	case "":
	case "cpu":
		a.profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
	case "mem":
		a.profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
	default:
		return fmt.Errorf("unknown profile mode %q", a.profileMode)
	}

	a.cfg = cfg
	a.registry = prometheus.NewRegistry()
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.profiler != nil {
		a.profiler.Stop()
	}
	if a.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsFile, a.registry); err != nil {
		return fmt.Errorf("unable to write metrics, %w", err)
	}
	return nil
}

func (a *app) openStore(ctx context.Context) (*store.SQLStore, error) {
	if _, err := os.Stat(a.cfg.Database); err != nil {
		return nil, fmt.Errorf("database %s, %w", a.cfg.Database, err)
	}
	return store.Open(ctx, a.cfg.Database, a.cfg.Store)
}

func (a *app) newForecaster(s forecaster.SeriesStore) (*forecaster.Forecaster, error) {
	f, err := forecaster.New(s, a.cfg.Forecast)
	if err != nil {
		return nil, err
	}
	f.WithMetrics(forecaster.NewMetrics(a.registry))
	if a.cfg.CacheSize > 0 {
		cache, err := forecaster.NewSplitCache(a.cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		f.WithSplitCache(cache)
	}
	return f, nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// writeHTML renders a chart page to path creating missing directories
func writeHTML(path string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
