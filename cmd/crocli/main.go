package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/chynybekuuludastan/cro_optimizer/internal/config"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
)

func main() {
	app := &cli.App{
		Name:  "crocli",
		Usage: "score pages for conversion rate optimization and load performance",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine",
				Value:   config.EngineStatic,
				Usage:   "page engine: chrome or static",
				EnvVars: []string{"FETCH_ENGINE"},
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "output format: json or yaml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log debug output to stderr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "analyze a single page",
				ArgsUsage: "<url>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-performance",
						Usage: "skip the performance measurement",
					},
				},
				Action: analyzeAction,
			},
			{
				Name:      "compare",
				Usage:     fmt.Sprintf("compare %d to %d pages", analyzer.MinCompareURLs, analyzer.MaxCompareURLs),
				ArgsUsage: "<url> <url>...",
				Action:    compareAction,
			},
			{
				Name:      "recommend",
				Usage:     "AI recommendations for a page, with checklist fallback",
				ArgsUsage: "<url>",
				Action:    recommendAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("analyze expects exactly one URL", 2)
	}
	return withFactory(c, func(ctx context.Context, f *service.Factory, a *analyzer.Analyzer, _ *config.Config, _ *slog.Logger) error {
		result, err := a.Analyze(ctx, c.Args().First(), !c.Bool("no-performance"))
		if err != nil {
			return err
		}
		return render(c.App.Writer, c.String("format"), result)
	})
}

func compareAction(c *cli.Context) error {
	return withFactory(c, func(ctx context.Context, f *service.Factory, a *analyzer.Analyzer, _ *config.Config, _ *slog.Logger) error {
		result, err := a.Compare(ctx, c.Args().Slice())
		if err != nil {
			return err
		}
		return render(c.App.Writer, c.String("format"), result)
	})
}

func recommendAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("recommend expects exactly one URL", 2)
	}
	return withFactory(c, func(ctx context.Context, f *service.Factory, _ *analyzer.Analyzer, cfg *config.Config, log *slog.Logger) error {
		result, err := f.RecommendationService(cfg, log).Recommend(ctx, c.Args().First())
		if err != nil {
			return err
		}
		return render(c.App.Writer, c.String("format"), result)
	})
}

type action func(ctx context.Context, f *service.Factory, a *analyzer.Analyzer, cfg *config.Config, log *slog.Logger) error

// withFactory builds the engines from the environment with the engine flag
// applied, runs fn and releases the engines.
func withFactory(c *cli.Context, fn action) error {
	format := c.String("format")
	if format != "json" && format != "yaml" {
		return cli.Exit("format must be json or yaml", 2)
	}

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.NewConfig()
	cfg.FetchEngine = c.String("engine")
	if cfg.MeasureEngine != config.EnginePageSpeed {
		cfg.MeasureEngine = cfg.FetchEngine
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := service.NewFactory(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer f.Close()

	a := analyzer.New(f.Fetcher, f.Meter, analyzer.WithLogger(log))
	return fn(ctx, f, a, cfg, log)
}

// render writes v as indented JSON or as YAML with the JSON field names.
func render(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
