package intel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tracelight/osint-cli/internal/guidance"
	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/resilience"
	"github.com/tracelight/osint-cli/internal/source"
)

// Aggregator orchestrates multi-source phone intelligence queries.
type Aggregator struct {
	cfg      *Config
	registry *source.Registry
	breakers *resilience.BreakerSet

	retryRemote resilience.RetryConfig
	retryLocal  resilience.RetryConfig
}

// New creates an aggregator over the given provider registry.
func New(cfg *Config, registry *source.Registry) *Aggregator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Aggregator{
		cfg:         cfg,
		registry:    registry,
		breakers:    resilience.NewBreakerSet(resilience.DefaultBreakerConfig()),
		retryRemote: cfg.Retry.Remote.ToRetryConfig(),
		retryLocal:  cfg.Retry.Local.ToRetryConfig(),
	}
}

// Aggregate queries the requested sources for one identifier and merges
// their answers. It returns a structured error only when the input itself
// fails pre-dispatch validation; source failures degrade to recorded
// failures in the result, never an error.
func (a *Aggregator) Aggregate(ctx context.Context, identifier, region string, sources []model.Source) (*model.AggregatedIntelligence, error) {
	start := time.Now()

	region, err := a.resolveRegion(identifier, region)
	if err != nil {
		return nil, err
	}

	if check := guidance.ValidateFormat(identifier, region); !check.IsValidFormat {
		suggestions := append(append([]string{}, check.Suggestions...), guidance.ValidationTips(region)...)
		return nil, model.NewInvalidFormatError(
			identifier,
			check.Issues[0],
			suggestions,
			guidance.FormatExamples(region),
		)
	}

	if len(sources) == 0 {
		sources = a.registry.List()
	}

	agg := &model.AggregatedIntelligence{
		ID:         uuid.New().String(),
		Identifier: identifier,
		Region:     region,
		Results:    make([]model.IntelligenceResult, len(sources)),
		CreatedAt:  time.Now().UTC(),
	}

	g := new(errgroup.Group)
	g.SetLimit(a.maxConcurrency())
	for i, src := range sources {
		g.Go(func() error {
			agg.Results[i] = a.querySource(ctx, src, identifier, region)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in the results

	a.finalize(agg)
	agg.ProcessingTime = time.Since(start)

	zap.L().Info("aggregation complete",
		zap.String("identifier", identifier),
		zap.String("region", region),
		zap.Int("sources", agg.TotalSources),
		zap.Int("successful", agg.SuccessfulSources),
		zap.Float64("confidence", agg.OverallConfidence),
		zap.Duration("elapsed", agg.ProcessingTime),
	)

	return agg, nil
}

// resolveRegion fills in a missing region from prefix heuristics and rejects
// explicitly-requested regions outside the supported set.
func (a *Aggregator) resolveRegion(identifier, region string) (string, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return guidance.SuggestCountry(identifier), nil
	}
	if !guidance.RegionSupported(region) {
		return "", model.NewUnsupportedRegionError(region, guidance.SupportedRegions())
	}
	return region, nil
}

// querySource runs one provider through the rate limiter, circuit breaker,
// and retry loop, and always produces a result. Exceptions never cross this
// boundary; they become failed results.
func (a *Aggregator) querySource(ctx context.Context, src model.Source, identifier, region string) model.IntelligenceResult {
	started := time.Now()

	p := a.registry.Get(src)
	if p == nil {
		return model.FailedResult(src, errors.New("source not registered"), time.Since(started))
	}
	if !p.Available() {
		// Expected condition: remote provider without a credential. Recorded,
		// never retried.
		return model.FailedResult(src, source.ErrNotConfigured, time.Since(started))
	}

	key := string(src)
	if err := a.breakers.Allow(key); err != nil {
		return model.FailedResult(src, err, time.Since(started))
	}

	if err := a.registry.Wait(ctx, src); err != nil {
		return model.FailedResult(src, err, time.Since(started))
	}

	retryCfg := a.retryLocal
	if p.Remote() {
		retryCfg = a.retryRemote
	}
	retryCfg.OnRetry = resilience.RetryLogger(key, "query")

	type answer struct {
		fields     model.Fields
		confidence float64
	}
	ans, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (answer, error) {
		fields, confidence, qerr := p.Query(ctx, identifier, region)
		return answer{fields, confidence}, qerr
	})
	elapsed := time.Since(started)
	a.breakers.Record(key, err)

	if err != nil {
		structured := a.wrapSourceError(src, err, retryCfg.MaxAttempts)
		zap.L().Warn("source query failed",
			zap.String("source", key),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return model.FailedResult(src, structured, elapsed)
	}

	result, err := model.NewResult(src, ans.fields, ans.confidence, elapsed)
	if err != nil {
		// A provider reporting out-of-range confidence is treated as a
		// failed source rather than poisoning the merge.
		return model.FailedResult(src, err, elapsed)
	}
	return result
}

// wrapSourceError converts an exhausted or permanent failure into the
// structured taxonomy surfaced through the result's error string.
func (a *Aggregator) wrapSourceError(src model.Source, err error, attempts int) error {
	if errors.Is(err, source.ErrNotConfigured) || errors.Is(err, resilience.ErrBreakerOpen) {
		return err
	}

	var rle *resilience.RateLimitedError
	if errors.As(err, &rle) {
		return model.NewRateLimitError(src, rle.RetryAfter)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewTimeoutError(src, nil)
	}

	return model.NewSourceConnectionError(src, err, resilience.IsTransient(err), attempts)
}

// finalize runs the merge, derives the overall confidence, and fills the
// bookkeeping fields.
func (a *Aggregator) finalize(agg *model.AggregatedIntelligence) {
	agg.TotalSources = len(agg.Results)
	for _, r := range agg.Results {
		if r.Success {
			agg.SuccessfulSources++
			agg.SourcesUsed = append(agg.SourcesUsed, r.Source)
		} else {
			agg.RecordError(r.Source, r.Error)
		}
	}

	agg.Merged = mergeResults(agg.Results, a.cfg)
	agg.OverallConfidence = overallConfidence(agg.Results, a.cfg)
	agg.ConfidenceLevel = model.ClassifyConfidence(agg.OverallConfidence)

	a.attachWarnings(agg)
}

// attachWarnings adds advisory annotations: synthetic digit patterns seen by
// the heuristic provider, and low aggregate quality.
func (a *Aggregator) attachWarnings(agg *model.AggregatedIntelligence) {
	for _, r := range agg.Results {
		if !r.Success {
			continue
		}
		if flag, ok := r.Fields.Extra[source.ExtraSuspiciousPattern]; ok {
			agg.Warnings = append(agg.Warnings, model.Warning{
				Code:    model.WarnSuspiciousInput,
				Message: "digit pattern looks synthetic (" + flag + ")",
			})
			break
		}
	}

	if agg.SuccessfulSources > 0 && agg.OverallConfidence < a.cfg.Scoring.LowQualityThreshold {
		agg.Warnings = append(agg.Warnings, model.Warning{
			Code:    model.WarnLowQuality,
			Message: "overall confidence is below the quality threshold; corroborate before acting",
		})
	}
}

func (a *Aggregator) maxConcurrency() int {
	if a.cfg.MaxConcurrency > 0 {
		return a.cfg.MaxConcurrency
	}
	return 4
}
