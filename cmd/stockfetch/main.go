// stockfetch - download historical daily closing prices as a copy-pasteable table
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockFetch/internal/advisory"
	"StockFetch/internal/config"
	"StockFetch/internal/export"
	"StockFetch/internal/fetcher"
	"StockFetch/internal/model"
	"StockFetch/internal/provider"
	"StockFetch/internal/render"
	"StockFetch/internal/scheduler"
	"StockFetch/internal/session"
	"StockFetch/internal/tui"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	cfgPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stockfetch",
		Short: "Download historical daily closing prices as a copy-pasteable table",
		Long: `stockfetch fetches historical daily closes for a ticker from Yahoo
Finance and renders them as a table you can paste straight into a spreadsheet.
Without a subcommand it starts the interactive picker.`,
		RunE: runTUI,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file path (default configs/config.yaml)")

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if cfg.Log.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newProvider(cfg *config.Config) provider.Provider {
	if cfg.Provider == "mock" {
		return &provider.MockProvider{}
	}
	return provider.NewYahoo(cfg.Proxy, time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)
}

// buildQuery fills in the defaults the original tool used: first catalog
// entry, end today, start default_range_days earlier.
func buildQuery(cfg *config.Config, symbol, start, end string) (model.Query, error) {
	if symbol == "" && len(cfg.Tickers) > 0 {
		symbol = cfg.Tickers[0].Symbol
	}
	endDate := time.Now()
	if end != "" {
		d, err := time.Parse(model.DateLayout, end)
		if err != nil {
			return model.Query{}, fmt.Errorf("parse end date: %w", err)
		}
		endDate = d
	}
	startDate := endDate.AddDate(0, 0, -cfg.DefaultRangeDays)
	if start != "" {
		d, err := time.Parse(model.DateLayout, start)
		if err != nil {
			return model.Query{}, fmt.Errorf("parse start date: %w", err)
		}
		startDate = d
	}
	q := model.Query{Symbol: symbol, Start: startDate, End: endDate}
	if err := q.Validate(); err != nil {
		return model.Query{}, err
	}
	return q, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return tui.Run(cfg, newProvider(cfg), session.NewCache(), newLogger(cfg))
}

func fetchCmd() *cobra.Command {
	var symbol, start, end, output, sqlitePath string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "One-shot fetch that prints the table to stdout",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			q, err := buildQuery(cfg, symbol, start, end)
			if err != nil {
				return err
			}

			f := fetcher.New(newProvider(cfg), advisory.NewLogAdvisor(log), cfg.Fetch.MaxRetries, log)
			series := f.Fetch(q)

			if sqlitePath == "" {
				sqlitePath = cfg.Output.SQLitePath
			}
			if sqlitePath != "" {
				w, err := export.NewSQLiteWriter(sqlitePath)
				if err != nil {
					return fmt.Errorf("open sqlite export: %w", err)
				}
				defer w.Close()
				if err := w.WriteSeries(q, series); err != nil {
					return fmt.Errorf("sqlite export: %w", err)
				}
			}

			if len(series) == 0 {
				log.Warn().Msg("no data, or no trading days in the selected range")
				return nil
			}

			labels := render.Labels{Date: cfg.Output.DateLabel, Close: cfg.Output.CloseLabel}
			if output == "" {
				output = cfg.Output.Format
			}
			switch output {
			case "tsv":
				return render.WriteTSV(os.Stdout, labels, series)
			case "csv":
				return render.WriteCSV(os.Stdout, labels, series)
			default:
				fmt.Println(render.Table(labels, series))
				fmt.Println(render.Summary(q, series))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Ticker symbol (defaults to the first catalog entry)")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD (default: end minus default_range_days)")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: table, tsv or csv")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also export rows into this SQLite file")
	return cmd
}

func watchCmd() *cobra.Command {
	var symbol, cronSpec string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep re-fetching one query on a cron schedule",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			if symbol == "" {
				symbol = cfg.Watch.Symbol
			}
			// Fail early on a bad symbol; the per-tick rebuild below only
			// moves the rolling window.
			if _, err := buildQuery(cfg, symbol, "", ""); err != nil {
				return err
			}

			var w export.Writer = export.NewNoopWriter()
			if cfg.Output.SQLitePath != "" {
				sw, err := export.NewSQLiteWriter(cfg.Output.SQLitePath)
				if err != nil {
					return fmt.Errorf("open sqlite export: %w", err)
				}
				defer sw.Close()
				w = sw
			}

			labels := render.Labels{Date: cfg.Output.DateLabel, Close: cfg.Output.CloseLabel}
			f := fetcher.New(newProvider(cfg), advisory.NewLogAdvisor(log), cfg.Fetch.MaxRetries, log)
			sched := scheduler.New(f, session.NewCache(), w, log, func(q model.Query, s model.PriceSeries) {
				if len(s) == 0 {
					log.Warn().Str("symbol", q.Symbol).Msg("no data, or no trading days in the selected range")
					return
				}
				if err := render.WriteTSV(os.Stdout, labels, s); err != nil {
					log.Error().Err(err).Msg("write tsv")
				}
				fmt.Println(render.Summary(q, s))
			})

			queryFn := func() model.Query {
				q, _ := buildQuery(cfg, symbol, "", "")
				return q
			}
			spec := cronSpec
			if spec == "" {
				spec = cfg.Watch.Cron
			}
			if err := sched.Register(spec, queryFn); err != nil {
				return err
			}

			sched.RunNow(queryFn)
			sched.Start()
			defer sched.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "Ticker symbol (defaults to watch.symbol, then the first catalog entry)")
	cmd.Flags().StringVar(&cronSpec, "cron", "", "Cron schedule with seconds (default from config)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("stockfetch version %s\n", version)
		},
	}
}
