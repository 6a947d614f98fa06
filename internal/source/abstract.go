package source

import (
	"context"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/pkg/abstractapi"
)

// AbstractProvider queries the AbstractAPI phone validation endpoint.
type AbstractProvider struct {
	client abstractapi.Client
	apiKey string
}

// NewAbstractProvider creates the AbstractAPI provider.
func NewAbstractProvider(apiKey string, opts ...abstractapi.Option) *AbstractProvider {
	return &AbstractProvider{
		client: abstractapi.NewClient(apiKey, opts...),
		apiKey: apiKey,
	}
}

// Name implements Provider.
func (p *AbstractProvider) Name() model.Source { return model.SourceAbstract }

// Available implements Provider.
func (p *AbstractProvider) Available() bool { return p.apiKey != "" }

// Remote implements Provider.
func (p *AbstractProvider) Remote() bool { return true }

// Query maps the provider's response into the common field vocabulary.
func (p *AbstractProvider) Query(ctx context.Context, identifier, region string) (model.Fields, float64, error) {
	if !p.Available() {
		return model.Fields{}, 0, ErrNotConfigured
	}

	resp, err := p.client.Validate(ctx, identifier, region)
	if err != nil {
		return model.Fields{}, 0, err
	}

	fields := model.Fields{
		IsValid:       model.Bool(resp.Valid),
		Country:       model.String(resp.Country.Name),
		Region:        model.String(resp.Country.Code),
		CallingCode:   model.String(resp.Country.Prefix),
		Carrier:       model.String(resp.Carrier),
		LineType:      model.String(resp.Type),
		Location:      model.String(resp.Location),
		International: model.String(resp.Format.International),
		National:      model.String(resp.Format.Local),
	}

	confidence := 85.0
	if resp.Carrier == "" && resp.Location == "" {
		confidence = 70
	}
	return fields, confidence, nil
}
