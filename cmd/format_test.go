package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tracelight/osint-cli/internal/intel"
	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/monitoring"
	"github.com/tracelight/osint-cli/internal/source"
)

func TestFormatSources(t *testing.T) {
	reg := source.NewRegistry(0)
	reg.Register(source.NewLocalProvider())
	reg.Register(source.NewNumVerifyProvider(""))

	var buf bytes.Buffer
	formatSources(&buf, reg, intel.DefaultConfig())

	out := buf.String()
	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, "libphonenumber")
	assert.Contains(t, out, "offline")
	assert.Contains(t, out, "0.95")
	assert.Contains(t, out, "numverify")
	assert.Contains(t, out, "no (missing api key)")
}

func TestFormatInvestigations(t *testing.T) {
	invs := []model.Investigation{
		{
			ID:                "0b5fbb38-1c06-4a61-9d3f-2a2e65a1b001",
			Identifier:        "+919876501234",
			Region:            "IN",
			OverallConfidence: 88.5,
			ConfidenceLevel:   model.LevelHigh,
			SuccessfulSources: 3,
			TotalSources:      4,
			CreatedAt:         time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatInvestigations(&buf, invs)

	out := buf.String()
	assert.Contains(t, out, "0b5fbb38")
	assert.NotContains(t, out, "0b5fbb38-1c06")
	assert.Contains(t, out, "+919876501234")
	assert.Contains(t, out, "88.5")
	assert.Contains(t, out, "3/4")
	assert.Contains(t, out, "2026-08-20T12:00:00Z")
}

func TestFormatInvestigations_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatInvestigations(&buf, nil)
	assert.Contains(t, buf.String(), "no investigations found")
}

func TestFormatStats(t *testing.T) {
	snap := &monitoring.MetricsSnapshot{
		Total:         4,
		AvgConfidence: 72.3,
		DegradedRate:  0.25,
		LookbackHours: 24,
		ByLevel: map[model.Level]int{
			model.LevelHigh:   3,
			model.LevelMedium: 1,
		},
		SourceSuccessRate: map[model.Source]float64{
			model.SourceLocal:     1.0,
			model.SourceNumVerify: 0.5,
		},
	}

	var buf bytes.Buffer
	formatStats(&buf, snap)

	out := buf.String()
	assert.Contains(t, out, "Investigations: 4 (last 24h)")
	assert.Contains(t, out, "72.3%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "libphonenumber")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "high")
}

func TestFormatStats_Empty(t *testing.T) {
	var buf bytes.Buffer
	formatStats(&buf, &monitoring.MetricsSnapshot{})
	assert.Contains(t, buf.String(), "Investigations: 0 (all history)")
}
