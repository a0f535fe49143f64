package services

import (
	"context"
	"strconv"
	"time"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/mapping"
	"github.com/GregMSThompson/findash-backend/internal/models"
	"github.com/GregMSThompson/findash-backend/internal/providers"
	"github.com/GregMSThompson/findash-backend/pkg/logger"
)

// Request parameter defaults when the widget does not set them.
const (
	defaultSymbol   = "IBM"
	defaultKeywords = "tesco"

	chartLookback = 31536000 // one year, in seconds
)

// fetcher is the outbound HTTP adapter used by the pipeline.
type fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// providerLoader returns the user's saved provider overrides.
type providerLoader interface {
	Load(ctx context.Context, uid string) ([]models.Provider, error)
}

// widgetPipeline turns a widget into render-ready data:
// resolve URL, fetch, check provider error markers, project.
type widgetPipeline struct {
	fetcher   fetcher
	providers providerLoader
	clockNow  func() time.Time
}

func NewWidgetPipeline(f fetcher, p providerLoader) *widgetPipeline {
	return &widgetPipeline{fetcher: f, providers: p, clockNow: time.Now}
}

// Run fetches and projects the widget's data. Its signature matches
// refresh.Runner.
func (p *widgetPipeline) Run(ctx context.Context, uid string, w models.Widget) (any, error) {
	log := logger.FromContext(ctx).With("widget_id", w.ID, "component", w.ComponentName)

	url, err := p.ResolveURL(ctx, uid, w)
	if err != nil {
		return nil, err
	}

	raw, err := p.fetcher.Get(ctx, url)
	if err != nil {
		log.Warn("widget fetch failed", "error", err)
		return nil, err
	}
	if err := mapping.CheckProviderError(raw); err != nil {
		log.Info("provider returned an error payload", "error", err)
		return nil, err
	}

	cfg, err := mapping.ResolveConfig(w.ComponentName, w.Config)
	if err != nil {
		return nil, err
	}
	return mapping.Project(raw, cfg)
}

// ResolveURL picks the request URL for a widget. A custom endpoint wins;
// otherwise the widget's provider and component choose an endpoint.
func (p *widgetPipeline) ResolveURL(ctx context.Context, uid string, w models.Widget) (string, error) {
	cfg := models.WidgetConfig{}
	if w.Config != nil {
		cfg = *w.Config
	}
	if cfg.CustomAPIEndpoint != "" {
		return cfg.CustomAPIEndpoint, nil
	}

	saved, err := p.providers.Load(ctx, uid)
	if err != nil {
		return "", err
	}
	provider, ok := providers.Find(providers.Merge(providers.Defaults(), saved), cfg.APIProvider)
	if !ok {
		return "", errs.NewConfigError("Please select an API provider.")
	}

	params := map[string]string{
		"symbol":   orDefault(cfg.Symbol, defaultSymbol),
		"keywords": orDefault(cfg.Keywords, defaultKeywords),
	}

	var endpoint string
	switch w.ComponentName {
	case models.ComponentChart:
		now := p.clockNow().Unix()
		params["from"] = strconv.FormatInt(now-chartLookback, 10)
		params["to"] = strconv.FormatInt(now, 10)
		endpoint = "intraday"
		if cfg.TimeInterval == "daily" {
			endpoint = "daily"
		}
		if provider.ID == providers.Finnhub {
			endpoint = "candles"
		}
	case models.ComponentCard:
		endpoint = "quote"
	case models.ComponentTable:
		endpoint = "search"
	default:
		return "", errs.NewConfigError("Could not determine endpoint for this widget type and provider.")
	}

	return providers.BuildURL(provider, endpoint, params)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
