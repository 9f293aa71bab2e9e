package main

import (
	"context"
	"time"

	"github.com/ZaguanLabs/wptl"
	"github.com/ZaguanLabs/wptl/cache"
	"github.com/ZaguanLabs/wptl/config"
	"github.com/ZaguanLabs/wptl/processor"
	"github.com/ZaguanLabs/wptl/provider"
	"github.com/ZaguanLabs/wptl/wordpress"
	"go.uber.org/zap"
)

// modelProvider is a backend that knows its default model.
type modelProvider interface {
	wptl.AIProvider
	Model() string
}

// newProvider builds the configured backend and wraps it with the per-call
// timeout, rate limit and retry layers, innermost first.
func newProvider(ctx context.Context, tc config.Translation, logger *zap.Logger) (wptl.AIProvider, string, error) {
	var backend modelProvider
	switch tc.Provider {
	case config.ProviderOpenAI:
		backend = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  tc.APIKey,
			Model:   tc.Model,
			BaseURL: tc.BaseURL,
		})
	default:
		gp, err := provider.NewGeminiProvider(ctx, provider.GeminiConfig{
			APIKey:  tc.APIKey,
			Model:   tc.Model,
			BaseURL: tc.BaseURL,
			Timeout: tc.Timeout,
		})
		if err != nil {
			return nil, "", err
		}
		backend = gp
	}

	var p wptl.AIProvider = backend
	if tc.Timeout > 0 {
		p = wptl.NewTimeoutProvider(p, tc.Timeout)
	}
	if tc.RPM > 0 {
		p = wptl.NewRateLimitedProvider(p, wptl.RateLimitConfig{RequestsPerMinute: tc.RPM})
	}
	if tc.Retries > 0 {
		p = wptl.NewRetryableProvider(p, wptl.RetryConfig{
			MaxRetries: tc.Retries,
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
		}).WithLogger(logger)
	}

	logger.Debug("provider ready",
		zap.String("provider", tc.Provider),
		zap.String("model", backend.Model()))
	return p, backend.Model(), nil
}

func newProcessor(tc config.Translation) *processor.HTMLProcessor {
	strategy, _ := processor.ParseStrategy(tc.Strategy)
	return processor.NewHTMLProcessor(
		processor.WithStrategy(strategy),
		processor.WithBoundaryAnchoring(tc.Anchored),
	)
}

func newTranslator(tc config.Translation, p wptl.AIProvider, model string, store cache.Store, logger *zap.Logger) *wptl.Translator {
	opts := []wptl.TranslatorOption{
		wptl.WithProcessor(newProcessor(tc)),
		wptl.WithSourceLang(tc.Source),
		wptl.WithTargetLang(tc.Target),
		wptl.WithBatchBudget(tc.Budget),
		wptl.WithModel(model),
		wptl.WithLogger(logger),
	}
	if store != nil {
		opts = append(opts, wptl.WithCache(store))
	}
	return wptl.NewTranslator(p, opts...)
}

// openCache opens the configured cache. The returned closer is never nil.
func (a *app) openCache(ctx context.Context) (cache.Store, func(), error) {
	store, err := cache.Open(ctx, a.cfg.Cache.StoreConfig(), a.logger)
	if err != nil {
		return nil, func() {}, err
	}
	if store == nil {
		return nil, func() {}, nil
	}
	return store, func() {
		if err := store.Close(); err != nil {
			a.logger.Warn("closing cache failed", zap.Error(err))
		}
	}, nil
}

// setupTranslation loads configuration and builds the translator stack.
func (a *app) setupTranslation(ctx context.Context) (*wptl.Translator, func(), error) {
	if err := a.load(); err != nil {
		return nil, nil, err
	}
	if err := a.cfg.RequireAPIKey(); err != nil {
		return nil, nil, err
	}

	p, model, err := newProvider(ctx, a.cfg.Translation, a.logger)
	if err != nil {
		return nil, nil, err
	}
	store, closeCache, err := a.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	return newTranslator(a.cfg.Translation, p, model, store, a.logger), closeCache, nil
}

func (a *app) wordpressClient() (*wordpress.Client, error) {
	if err := a.load(); err != nil {
		return nil, err
	}
	if err := a.cfg.RequireWordPress(); err != nil {
		return nil, err
	}
	return wordpress.NewClient(a.cfg.WordPress.Credentials(), wordpress.WithLogger(a.logger)), nil
}
