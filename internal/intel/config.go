// Package intel implements the multi-source intelligence aggregation engine:
// it dispatches queries across providers, merges conflicting answers using
// source weights and per-field priorities, and derives an overall confidence
// for the merged record.
package intel

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/resilience"
)

// Config is the aggregation engine's confidence model plus dispatch tuning.
// Constructed once at startup and treated as read-only afterwards.
type Config struct {
	// SourceWeights is the relative trust per provider, in [0,1].
	SourceWeights map[model.Source]float64 `yaml:"source_weights"`

	// FieldPriorities lists, per field key, which source should win a
	// disagreement regardless of raw confidence.
	FieldPriorities map[string][]model.Source `yaml:"field_priorities"`

	// CriticalFields are the fields whose losing values are preserved as
	// alternatives in the merged record.
	CriticalFields []string `yaml:"critical_fields"`

	Scoring ScoringConfig `yaml:"scoring"`

	// MaxConcurrency bounds in-flight source queries. Default: 4.
	MaxConcurrency int `yaml:"max_concurrency"`

	// RemoteRPS is the per-source rate limit for remote providers.
	RemoteRPS float64 `yaml:"remote_rps"`

	Retry RetrySettings `yaml:"retry"`
}

// ScoringConfig holds the tunable constants of the overall-confidence
// formula. The qualitative direction is fixed (single source penalized,
// corroboration rewarded); the exact values are empirical.
type ScoringConfig struct {
	// SingleSourcePenalty multiplies a lone source's confidence.
	SingleSourcePenalty float64 `yaml:"single_source_penalty"`
	// PairBoost multiplies the weighted average for 2-3 successful sources.
	PairBoost float64 `yaml:"pair_boost"`
	// ManyBoost multiplies the weighted average for more than 3.
	ManyBoost float64 `yaml:"many_boost"`
	// FailurePenalty scales the reduction applied per unit of failure ratio.
	FailurePenalty float64 `yaml:"failure_penalty"`
	// LowQualityThreshold is the overall confidence below which a
	// low-quality warning is attached.
	LowQualityThreshold float64 `yaml:"low_quality_threshold"`
}

// RetrySettings carries serializable retry tuning per source category.
type RetrySettings struct {
	Remote RetryCategory `yaml:"remote"`
	Local  RetryCategory `yaml:"local"`
}

// RetryCategory is the YAML-friendly shape of one resilience.RetryConfig.
type RetryCategory struct {
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelayMS int    `yaml:"base_delay_ms"`
	MaxDelayMS  int    `yaml:"max_delay_ms"`
	Strategy    string `yaml:"strategy"`
	Jitter      bool   `yaml:"jitter"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ToRetryConfig converts the category settings into the retry layer's config.
func (rc RetryCategory) ToRetryConfig() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if rc.MaxAttempts > 0 {
		cfg.MaxAttempts = rc.MaxAttempts
	}
	if rc.BaseDelayMS > 0 {
		cfg.BaseDelay = time.Duration(rc.BaseDelayMS) * time.Millisecond
	}
	if rc.MaxDelayMS > 0 {
		cfg.MaxDelay = time.Duration(rc.MaxDelayMS) * time.Millisecond
	}
	if rc.Strategy != "" {
		cfg.Strategy = resilience.Strategy(rc.Strategy)
	}
	cfg.Jitter = rc.Jitter
	if rc.TimeoutSecs > 0 {
		cfg.Timeout = time.Duration(rc.TimeoutSecs) * time.Second
	}
	return cfg
}

// DefaultConfig returns the built-in confidence model. The local parser is
// trusted most; the pattern analyzer least.
func DefaultConfig() *Config {
	return &Config{
		SourceWeights: map[model.Source]float64{
			model.SourceLocal:     0.95,
			model.SourceNumVerify: 0.90,
			model.SourceVeriphone: 0.88,
			model.SourceAbstract:  0.85,
			model.SourceHeuristic: 0.60,
		},
		FieldPriorities: map[string][]model.Source{
			model.FieldCarrier:       {model.SourceNumVerify, model.SourceVeriphone, model.SourceAbstract, model.SourceLocal},
			model.FieldLocation:      {model.SourceNumVerify, model.SourceAbstract, model.SourceLocal},
			model.FieldIsValid:       {model.SourceLocal, model.SourceNumVerify, model.SourceVeriphone, model.SourceAbstract},
			model.FieldLineType:      {model.SourceLocal, model.SourceNumVerify, model.SourceVeriphone},
			model.FieldCountry:       {model.SourceLocal, model.SourceNumVerify, model.SourceAbstract},
			model.FieldRegion:        {model.SourceLocal, model.SourceNumVerify, model.SourceVeriphone},
			model.FieldCallingCode:   {model.SourceLocal, model.SourceNumVerify},
			model.FieldE164:          {model.SourceLocal, model.SourceVeriphone},
			model.FieldInternational: {model.SourceLocal, model.SourceNumVerify},
			model.FieldNational:      {model.SourceLocal, model.SourceNumVerify},
		},
		CriticalFields: []string{
			model.FieldIsValid,
			model.FieldCarrier,
			model.FieldCountry,
			model.FieldRegion,
			model.FieldLineType,
		},
		Scoring: ScoringConfig{
			SingleSourcePenalty: 0.85,
			PairBoost:           1.1,
			ManyBoost:           1.3,
			FailurePenalty:      0.3,
			LowQualityThreshold: 40,
		},
		MaxConcurrency: 4,
		RemoteRPS:      2,
		Retry: RetrySettings{
			Remote: RetryCategory{
				MaxAttempts: 3,
				BaseDelayMS: 500,
				MaxDelayMS:  10000,
				Strategy:    string(resilience.StrategyExponential),
				Jitter:      true,
				TimeoutSecs: 10,
			},
			Local: RetryCategory{
				MaxAttempts: 1,
				TimeoutSecs: 2,
			},
		},
	}
}

// LoadConfig reads confidence model overrides from a YAML file and applies
// them over the defaults. Absent keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "intel: read config %s", path)
	}

	var wrapper struct {
		Confidence struct {
			SourceWeights   map[model.Source]float64  `yaml:"source_weights"`
			FieldPriorities map[string][]model.Source `yaml:"field_priorities"`
			CriticalFields  []string                  `yaml:"critical_fields"`
			Scoring         *ScoringConfig            `yaml:"scoring"`
			MaxConcurrency  int                       `yaml:"max_concurrency"`
			RemoteRPS       float64                   `yaml:"remote_rps"`
			Retry           *RetrySettings            `yaml:"retry"`
		} `yaml:"confidence"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "intel: parse config")
	}

	cfg := DefaultConfig()
	ov := wrapper.Confidence
	for src, w := range ov.SourceWeights {
		cfg.SourceWeights[src] = w
	}
	for field, prio := range ov.FieldPriorities {
		cfg.FieldPriorities[field] = prio
	}
	if len(ov.CriticalFields) > 0 {
		cfg.CriticalFields = ov.CriticalFields
	}
	if ov.Scoring != nil {
		cfg.Scoring = *ov.Scoring
	}
	if ov.MaxConcurrency > 0 {
		cfg.MaxConcurrency = ov.MaxConcurrency
	}
	if ov.RemoteRPS > 0 {
		cfg.RemoteRPS = ov.RemoteRPS
	}
	if ov.Retry != nil {
		cfg.Retry = *ov.Retry
	}

	return cfg, nil
}

// Weight returns the trust weight for a source, with a conservative default
// for sources missing from the table.
func (c *Config) Weight(source model.Source) float64 {
	if w, ok := c.SourceWeights[source]; ok {
		return w
	}
	return 0.5
}

// IsCritical reports whether losing values for the field are preserved.
func (c *Config) IsCritical(field string) bool {
	for _, f := range c.CriticalFields {
		if f == field {
			return true
		}
	}
	return false
}
