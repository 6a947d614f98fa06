package source

import (
	"context"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/pkg/numverify"
)

// NumVerifyProvider queries the NumVerify validation API.
type NumVerifyProvider struct {
	client numverify.Client
	apiKey string
}

// NewNumVerifyProvider creates the NumVerify provider. An empty key yields
// an unavailable provider; Query then reports ErrNotConfigured.
func NewNumVerifyProvider(apiKey string, opts ...numverify.Option) *NumVerifyProvider {
	return &NumVerifyProvider{
		client: numverify.NewClient(apiKey, opts...),
		apiKey: apiKey,
	}
}

// Name implements Provider.
func (p *NumVerifyProvider) Name() model.Source { return model.SourceNumVerify }

// Available implements Provider.
func (p *NumVerifyProvider) Available() bool { return p.apiKey != "" }

// Remote implements Provider.
func (p *NumVerifyProvider) Remote() bool { return true }

// Query maps the provider's response into the common field vocabulary.
func (p *NumVerifyProvider) Query(ctx context.Context, identifier, region string) (model.Fields, float64, error) {
	if !p.Available() {
		return model.Fields{}, 0, ErrNotConfigured
	}

	resp, err := p.client.Validate(ctx, identifier, region)
	if err != nil {
		return model.Fields{}, 0, err
	}

	fields := model.Fields{
		IsValid:       model.Bool(resp.Valid),
		Country:       model.String(resp.CountryName),
		Region:        model.String(resp.CountryCode),
		CallingCode:   model.String(resp.CountryPrefix),
		Carrier:       model.String(resp.Carrier),
		LineType:      model.String(resp.LineType),
		Location:      model.String(resp.Location),
		International: model.String(resp.InternationalFormat),
		National:      model.String(resp.LocalFormat),
	}

	// Full responses (carrier resolved) score higher than bare validity.
	confidence := 90.0
	if resp.Carrier == "" && resp.Location == "" {
		confidence = 75
	}
	return fields, confidence, nil
}
