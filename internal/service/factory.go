// Package service assembles the page collaborators selected by configuration.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/chynybekuuludastan/cro_optimizer/internal/config"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/analyzer"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/browser"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/lighthouse"
	"github.com/chynybekuuludastan/cro_optimizer/internal/service/llm"
)

// Factory holds the fetcher, meter and advisor used by the analyzer and the
// recommendation service.
type Factory struct {
	Fetcher analyzer.PageFetcher
	Meter   analyzer.PerformanceMeter
	// Advisor is nil when no LLM is configured.
	Advisor llm.Advisor

	closers []func() error
}

// NewFactory creates the engines named by cfg. Close must be called to stop
// the browser and the LLM client.
func NewFactory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Factory, error) {
	f := &Factory{}

	var chrome *browser.Chrome
	if cfg.UsesChrome() {
		var err error
		chrome, err = browser.NewChrome(browser.ChromeOptions{
			ExecPath:       cfg.ChromePath,
			Headless:       cfg.BrowserHeadless,
			UserAgent:      cfg.UserAgent,
			TabRate:        cfg.BrowserTabRate,
			FetchTimeout:   cfg.FetchTimeout,
			MeasureTimeout: cfg.MeasureTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, chrome.Close)
	}

	static := browser.NewStatic(cfg.FetchTimeout, browser.WithUserAgent(cfg.UserAgent))

	switch cfg.FetchEngine {
	case config.EngineChrome:
		f.Fetcher = chrome
	case config.EngineStatic:
		f.Fetcher = static
	default:
		f.Close()
		return nil, fmt.Errorf("unknown fetch engine %q", cfg.FetchEngine)
	}

	switch cfg.MeasureEngine {
	case config.EngineChrome:
		f.Meter = chrome
	case config.EngineStatic:
		f.Meter = browser.NewStatic(cfg.MeasureTimeout, browser.WithUserAgent(cfg.UserAgent))
	case config.EnginePageSpeed:
		f.Meter = lighthouse.NewClient(cfg.PageSpeedURL, cfg.PageSpeedAPIKey,
			lighthouse.WithStrategy(lighthouse.Strategy(cfg.PageSpeedStrategy)),
		)
	default:
		f.Close()
		return nil, fmt.Errorf("unknown measure engine %q", cfg.MeasureEngine)
	}

	advisor, err := newAdvisor(ctx, cfg, logger)
	if err != nil {
		// Recommendations still work on the rubric alone.
		logger.Warn("LLM advisor disabled", slog.String("provider", cfg.LLMProvider), slog.Any("error", err))
	}
	f.Advisor = advisor

	logger.Info("engines ready",
		slog.String("fetch", cfg.FetchEngine),
		slog.String("measure", cfg.MeasureEngine),
		slog.Bool("advisor", f.Advisor != nil),
	)
	return f, nil
}

func newAdvisor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Advisor, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is not set")
		}
		advisor, err := llm.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, err
		}
		return advisor, nil
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
		advisor, err := llm.NewOpenAIAdvisor(cfg.OpenAIAPIKey, cfg.OpenAIModel, "", nil)
		if err != nil {
			return nil, err
		}
		return advisor, nil
	}
	return nil, nil
}

// RecommendationService wraps the factory's fetcher and advisor.
func (f *Factory) RecommendationService(cfg *config.Config, logger *slog.Logger) *llm.Service {
	return llm.NewService(f.Fetcher, llm.ServiceOptions{
		Advisor: f.Advisor,
		Timeout: cfg.LLMTimeout,
		Logger:  logger,
	})
}

// Close releases every engine that holds resources.
func (f *Factory) Close() error {
	if c, ok := f.Advisor.(interface{ Close() error }); ok {
		f.closers = append(f.closers, c.Close)
		f.Advisor = nil
	}
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
