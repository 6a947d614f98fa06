package source

import (
	"context"
	"strconv"

	"github.com/nyaruka/phonenumbers"
	"github.com/rotisserie/eris"

	"github.com/tracelight/osint-cli/internal/model"
)

// Confidence assigned by the local parser. A number the library reports
// invalid is still informative (the format itself was parseable), so the
// invalid case scores low but never zero.
const (
	localValidConfidence   = 95
	localInvalidConfidence = 20
)

// LocalProvider wraps the bundled libphonenumber port. Offline and
// deterministic; it fails only on input the library cannot parse at all.
type LocalProvider struct{}

// NewLocalProvider creates the offline parsing provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name implements Provider.
func (p *LocalProvider) Name() model.Source { return model.SourceLocal }

// Available implements Provider; the local parser needs no credential.
func (p *LocalProvider) Available() bool { return true }

// Remote implements Provider.
func (p *LocalProvider) Remote() bool { return false }

// Query parses the identifier and extracts everything the library knows:
// validity, region, carrier, line type, timezones, and standard formats.
func (p *LocalProvider) Query(_ context.Context, identifier, region string) (model.Fields, float64, error) {
	num, err := phonenumbers.Parse(identifier, region)
	if err != nil {
		return model.Fields{}, 0, eris.Wrapf(err, "local: parse %q", identifier)
	}

	valid := phonenumbers.IsValidNumber(num)
	fields := model.Fields{
		IsValid:    model.Bool(valid),
		IsPossible: model.Bool(phonenumbers.IsPossibleNumber(num)),
	}

	if code := phonenumbers.GetRegionCodeForNumber(num); code != "" {
		fields.Region = model.String(code)
	}
	fields.CallingCode = model.String(strconv.Itoa(int(num.GetCountryCode())))
	fields.LineType = model.String(lineTypeName(phonenumbers.GetNumberType(num)))

	if carrier, err := phonenumbers.GetCarrierForNumber(num, "en"); err == nil {
		fields.Carrier = model.String(carrier)
	}
	if geo, err := phonenumbers.GetGeocodingForNumber(num, "en"); err == nil {
		fields.Location = model.String(geo)
	}
	if tzs, err := phonenumbers.GetTimezonesForNumber(num); err == nil && len(tzs) > 0 {
		fields.Timezones = tzs
	}

	fields.E164 = model.String(phonenumbers.Format(num, phonenumbers.E164))
	fields.International = model.String(phonenumbers.Format(num, phonenumbers.INTERNATIONAL))
	fields.National = model.String(phonenumbers.Format(num, phonenumbers.NATIONAL))

	confidence := float64(localValidConfidence)
	if !valid {
		confidence = localInvalidConfidence
	}
	return fields, confidence, nil
}

func lineTypeName(t phonenumbers.PhoneNumberType) string {
	switch t {
	case phonenumbers.MOBILE:
		return "mobile"
	case phonenumbers.FIXED_LINE:
		return "fixed_line"
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return "fixed_line_or_mobile"
	case phonenumbers.TOLL_FREE:
		return "toll_free"
	case phonenumbers.PREMIUM_RATE:
		return "premium_rate"
	case phonenumbers.SHARED_COST:
		return "shared_cost"
	case phonenumbers.VOIP:
		return "voip"
	case phonenumbers.PERSONAL_NUMBER:
		return "personal"
	case phonenumbers.PAGER:
		return "pager"
	case phonenumbers.UAN:
		return "uan"
	case phonenumbers.VOICEMAIL:
		return "voicemail"
	default:
		return "unknown"
	}
}
