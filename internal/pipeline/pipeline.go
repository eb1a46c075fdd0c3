package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync/atomic"

	"github.com/couchcryptid/epw-station-etl/internal/domain"
	"github.com/couchcryptid/epw-station-etl/internal/observability"
)

// progressEvery is how many processed features pass between progress logs.
const progressEvery = 50

// HeaderFetcher returns the first bytes of a weather file.
type HeaderFetcher interface {
	FetchHeader(ctx context.Context, url string) ([]byte, error)
}

// Loader receives the final, deduplicated locations once per run.
type Loader interface {
	Load(ctx context.Context, locations []domain.Location) error
}

// Failure kinds recorded in a Report.
const (
	FailureSkipped = "skipped"
	FailureFetch   = "fetch"
	FailureParse   = "parse"
)

// Failure is one feature that produced no location.
type Failure struct {
	Kind   string
	Index  int
	URL    string
	Reason string
}

// Report summarizes a run.
type Report struct {
	Locations []domain.Location
	Failures  []Failure
	Processed int // features parsed into a location
	Skipped   int // features without a usable URL
	Total     int // features in the index
}

// Pipeline walks the index features, fetches each weather file header,
// parses its LOCATION line and keeps the best record per WMO index.
type Pipeline struct {
	fetcher  HeaderFetcher
	loaders  []Loader
	priority domain.PriorityTable
	pacer    *Pacer
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
	last     atomic.Pointer[[]domain.Location]
}

// New creates a Pipeline. loaders run in order after the features are processed.
func New(fetcher HeaderFetcher, loaders []Loader, priority domain.PriorityTable, pacer *Pacer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		loaders:  loaders,
		priority: priority,
		pacer:    pacer,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once a run has completed and its locations were loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("scrape has not completed yet")
	}
	return nil
}

// Locations returns the locations of the last completed run, or nil.
func (p *Pipeline) Locations() []domain.Location {
	if l := p.last.Load(); l != nil {
		return *l
	}
	return nil
}

// Run processes every feature of the index at indexURL. Per-feature failures
// are recorded in the report and never stop the run. The returned error is
// either a cancellation, in which case the report holds the partial result,
// or a loader failure.
func (p *Pipeline) Run(ctx context.Context, indexURL string, features []domain.Feature) (Report, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return Report{}, fmt.Errorf("parse index url: %w", err)
	}

	p.logger.Info("pipeline started", "index", indexURL, "features", len(features))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	store := domain.NewLocationStore(p.priority)
	report := Report{Total: len(features)}
	fetched := 0

	for i, f := range features {
		if err := ctx.Err(); err != nil {
			report.Locations = store.All()
			p.logger.Info("pipeline stopping", "reason", err, "processed", report.Processed)
			return report, err
		}
		p.metrics.FeaturesTotal.Inc()

		epwURL, err := domain.FeatureURL(i, f, base)
		if err != nil {
			report.Skipped++
			p.metrics.FeaturesSkipped.Inc()
			p.logger.Warn("skipping feature", "index", i, "error", err)
			report.Failures = append(report.Failures, Failure{Kind: FailureSkipped, Index: i, Reason: err.Error()})
			continue
		}

		if fetched > 0 && p.pacer != nil {
			if err := p.pacer.Wait(ctx); err != nil {
				report.Locations = store.All()
				return report, err
			}
		}
		fetched++

		loc, kind, err := p.processFeature(ctx, epwURL)
		if err != nil {
			if ctx.Err() != nil {
				report.Locations = store.All()
				return report, ctx.Err()
			}
			p.logger.Warn("feature failed", "index", i, "url", epwURL, "kind", kind, "error", err)
			report.Failures = append(report.Failures, Failure{Kind: kind, Index: i, URL: epwURL, Reason: err.Error()})
			continue
		}

		outcome := store.Upsert(loc)
		p.metrics.LocationUpserts.WithLabelValues(outcome.String()).Inc()
		p.metrics.UniqueLocations.Set(float64(store.Len()))
		if outcome != domain.Inserted {
			p.logger.Debug("duplicate wmo index", "wmo_index", loc.WMOIndex, "source", loc.SourceType, "outcome", outcome)
		}

		report.Processed++
		if report.Processed%progressEvery == 0 {
			p.logger.Info("progress", "processed", report.Processed, "visited", i+1, "total", len(features), "unique", store.Len())
		}
	}

	report.Locations = store.All()
	p.logger.Info("features processed",
		"total", report.Total,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", len(report.Failures)-report.Skipped,
		"unique", len(report.Locations),
	)

	for _, l := range p.loaders {
		if err := l.Load(ctx, report.Locations); err != nil {
			return report, fmt.Errorf("load locations: %w", err)
		}
	}

	p.last.Store(&report.Locations)
	p.ready.Store(true)
	return report, nil
}

// processFeature fetches, decodes and parses one weather file header. On
// failure it also returns the failure kind.
func (p *Pipeline) processFeature(ctx context.Context, epwURL string) (domain.Location, string, error) {
	raw, err := p.fetcher.FetchHeader(ctx, epwURL)
	if err != nil {
		return domain.Location{}, FailureFetch, err
	}

	text, encoding := domain.DecodeHeaderWithEncoding(raw)
	p.metrics.HeaderEncoding.WithLabelValues(encoding).Inc()

	loc, err := domain.ParseLocationLine(text, epwURL)
	if err != nil {
		p.metrics.ParseErrors.WithLabelValues(parseReason(err)).Inc()
		return domain.Location{}, FailureParse, err
	}
	return loc, "", nil
}

func parseReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLocationLineNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrNonNumericField):
		return "non_numeric"
	case errors.Is(err, domain.ErrMalformedLocationLine):
		return "malformed"
	default:
		return "other"
	}
}
