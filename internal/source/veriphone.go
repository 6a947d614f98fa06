package source

import (
	"context"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/pkg/veriphone"
)

// VeriphoneProvider queries the Veriphone verification API.
type VeriphoneProvider struct {
	client veriphone.Client
	apiKey string
}

// NewVeriphoneProvider creates the Veriphone provider.
func NewVeriphoneProvider(apiKey string, opts ...veriphone.Option) *VeriphoneProvider {
	return &VeriphoneProvider{
		client: veriphone.NewClient(apiKey, opts...),
		apiKey: apiKey,
	}
}

// Name implements Provider.
func (p *VeriphoneProvider) Name() model.Source { return model.SourceVeriphone }

// Available implements Provider.
func (p *VeriphoneProvider) Available() bool { return p.apiKey != "" }

// Remote implements Provider.
func (p *VeriphoneProvider) Remote() bool { return true }

// Query maps the provider's response into the common field vocabulary.
func (p *VeriphoneProvider) Query(ctx context.Context, identifier, region string) (model.Fields, float64, error) {
	if !p.Available() {
		return model.Fields{}, 0, ErrNotConfigured
	}

	resp, err := p.client.Verify(ctx, identifier, region)
	if err != nil {
		return model.Fields{}, 0, err
	}

	fields := model.Fields{
		IsValid:       model.Bool(resp.PhoneValid),
		Country:       model.String(resp.Country),
		Region:        model.String(resp.CountryCode),
		CallingCode:   model.String(resp.CountryPrefix),
		Carrier:       model.String(resp.Carrier),
		LineType:      model.String(resp.PhoneType),
		Location:      model.String(resp.PhoneRegion),
		E164:          model.String(resp.E164),
		International: model.String(resp.InternationalNumber),
		National:      model.String(resp.LocalNumber),
	}

	confidence := 88.0
	if resp.Carrier == "" {
		confidence = 75
	}
	return fields, confidence, nil
}
