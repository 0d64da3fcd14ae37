// Command patientview drives the patient popup data layer from a terminal:
// it preloads a variant from the report server and prints the page a popup
// would show for a filter, search term and page number.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/goliatone/go-variant-patients/pkg/di"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	baseURL        string
	minLoadingTime time.Duration
	pretty         bool
	verbose        bool
)

var rootCmd = &cobra.Command{
	Use:   "patientview",
	Short: "Inspect the patients carrying a variant",
	Long: `patientview preloads the patient lists of a variant and renders them the
way the variant popup does. Settings come from PATIENTS_* environment
variables; --base-url overrides PATIENTS_BASE_URL and skips the rest.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Report server URL (default $PATIENTS_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&minLoadingTime, "min-loading", -1, "Override the minimum loading time")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Human readable logs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(showCmd, warmCmd)
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func loadConfig() (di.Config, error) {
	var (
		cfg di.Config
		err error
	)
	if baseURL != "" {
		cfg = di.DefaultConfig(baseURL)
	} else if cfg, err = di.LoadConfig(); err != nil {
		return di.Config{}, err
	}
	if minLoadingTime >= 0 {
		cfg.MinLoadingTime = minLoadingTime
	}
	return cfg, nil
}

func newContainer() (*di.Container, zerolog.Logger, error) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return nil, logger, err
	}
	container, err := di.NewContainer(cfg, logger)
	if err != nil {
		return nil, logger, fmt.Errorf("wire container: %w", err)
	}
	return container, logger, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
