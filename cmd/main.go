package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/Raf-Pimentel/PantanalBurns/internal/dataset"
	"github.com/Raf-Pimentel/PantanalBurns/internal/delivery"
	"github.com/Raf-Pimentel/PantanalBurns/internal/notification"
	"github.com/Raf-Pimentel/PantanalBurns/internal/properties"
	"github.com/Raf-Pimentel/PantanalBurns/internal/ui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	rootPath     string
	nbrManifest  string
	ndviManifest string
	workers      int
	seriesPolicy string
	noCache      bool
	quiet        bool
)

func main() {
	defer recoverPanic()

	loadEnv()

	rootCmd := &cobra.Command{
		Use:   "pantanal",
		Short: "Regional burn severity analysis for the Pantanal",
		Long: `Extracts regional NBR and NDVI statistics from Landsat scene manifests,
builds the temporal result table and forecasts NBR with an ARIMA model and a
random forest.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.PrintBanner()
		},
	}

	rootCmd.PersistentFlags().StringVar(&rootPath, "root", "", "Project root (overrides ROOT_PATH)")
	rootCmd.PersistentFlags().StringVar(&nbrManifest, "nbr-manifest", "", "NBR manifest CSV (overrides NBR_MANIFEST)")
	rootCmd.PersistentFlags().StringVar(&ndviManifest, "ndvi-manifest", "", "NDVI manifest CSV (overrides NDVI_MANIFEST)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "Extraction workers (overrides EXTRACT_WORKERS)")
	rootCmd.PersistentFlags().StringVar(&seriesPolicy, "series-policy", "", "Regional series gap policy: interpolate or drop (overrides SERIES_GAP_POLICY)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "Recompute statistics for every raster")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Hide progress bars")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(forecastCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Extract statistics, forecast and write every output",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			_, err = runner.Run()
			return err
		},
	}
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Build the result table and regional series only",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner()
			if err != nil {
				return err
			}
			_, err = runner.Extract()
			return err
		},
	}
}

func forecastCmd() *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Train the random forest on an existing result table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if table == "" {
				table = cfg.ResultTablePath()
			}

			rows, err := dataset.ReadResultTable(table)
			if err != nil {
				return err
			}
			ui.PrintInfo("Loaded %d rows from %s", len(rows), table)

			_, err = delivery.NewRunner(cfg, delivery.WithProgress(!quiet)).Forecast(rows)
			return err
		},
	}
	cmd.Flags().StringVarP(&table, "table", "t", "", "Result table CSV (defaults to data/result/temporal_results.csv)")
	return cmd
}

func loadConfig() (*properties.Config, error) {
	if rootPath != "" {
		if err := os.Setenv("ROOT_PATH", rootPath); err != nil {
			return nil, err
		}
	}

	cfg, err := properties.Load()
	if err != nil {
		ui.PrintError("Invalid configuration: %v", err)
		return nil, err
	}

	if nbrManifest != "" {
		cfg.NBRManifest = nbrManifest
	}
	if ndviManifest != "" {
		cfg.NDVIManifest = ndviManifest
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if seriesPolicy != "" {
		policy, err := dataset.ParseGapPolicy(seriesPolicy)
		if err != nil {
			ui.PrintError("Invalid --series-policy: %v", err)
			return nil, err
		}
		cfg.SeriesGapPolicy = policy
	}
	if noCache {
		cfg.CacheEnabled = false
	}
	return cfg, nil
}

func newRunner() (*delivery.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return delivery.NewRunner(cfg, delivery.WithProgress(!quiet)), nil
}

func loadEnv() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
	ui.PrintWarning("No .env file found, using environment variables only")
}

func recoverPanic() {
	r := recover()
	if r == nil {
		return
	}

	pc, file, line, ok := runtime.Caller(3)
	location := "Unknown location"
	if ok {
		location = fmt.Sprintf("%s:%d in %s", file, line, runtime.FuncForPC(pc).Name())
	}

	ui.PrintError("PANIC: %v", r)
	ui.PrintError("Location: %s", location)

	errMessage := fmt.Sprintf("panic: %v\n\nLocation: %s\n\nStack trace:\n%s", r, location, debug.Stack())
	notifier := notification.NewNotifier("", "", properties.DiscordErrorNotificationUrl())
	if err := notifier.SendError(errMessage); err != nil {
		ui.PrintError("Failed to send notification: %v", err)
	}
	os.Exit(2)
}
