package model

// Well-known field keys shared by all providers. The merge step operates on
// these keys; provider-specific oddities go through Extra instead.
const (
	FieldIsValid       = "is_valid"
	FieldIsPossible    = "is_possible"
	FieldCountry       = "country"
	FieldRegion        = "region"
	FieldCallingCode   = "calling_code"
	FieldCarrier       = "carrier"
	FieldLineType      = "line_type"
	FieldLocation      = "location"
	FieldTimezones     = "timezones"
	FieldE164          = "e164"
	FieldInternational = "international"
	FieldNational      = "national"
)

// Fields is the common vocabulary extracted from a provider response.
// Nil members mean the provider did not report that field. Extra carries
// provider-specific values not yet promoted to first-class members.
type Fields struct {
	IsValid       *bool             `json:"is_valid,omitempty"`
	IsPossible    *bool             `json:"is_possible,omitempty"`
	Country       *string           `json:"country,omitempty"`
	Region        *string           `json:"region,omitempty"`
	CallingCode   *string           `json:"calling_code,omitempty"`
	Carrier       *string           `json:"carrier,omitempty"`
	LineType      *string           `json:"line_type,omitempty"`
	Location      *string           `json:"location,omitempty"`
	Timezones     []string          `json:"timezones,omitempty"`
	E164          *string           `json:"e164,omitempty"`
	International *string           `json:"international,omitempty"`
	National      *string           `json:"national,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Bool returns a pointer to b, for building Fields literals.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, skipping empty strings.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Items flattens the populated members into a field-key map for merging.
// Extra keys are included as-is; they never shadow first-class members.
func (f Fields) Items() map[string]any {
	out := make(map[string]any)
	for k, v := range f.Extra {
		out[k] = v
	}
	if f.IsValid != nil {
		out[FieldIsValid] = *f.IsValid
	}
	if f.IsPossible != nil {
		out[FieldIsPossible] = *f.IsPossible
	}
	if f.Country != nil {
		out[FieldCountry] = *f.Country
	}
	if f.Region != nil {
		out[FieldRegion] = *f.Region
	}
	if f.CallingCode != nil {
		out[FieldCallingCode] = *f.CallingCode
	}
	if f.Carrier != nil {
		out[FieldCarrier] = *f.Carrier
	}
	if f.LineType != nil {
		out[FieldLineType] = *f.LineType
	}
	if f.Location != nil {
		out[FieldLocation] = *f.Location
	}
	if len(f.Timezones) > 0 {
		tz := make([]string, len(f.Timezones))
		copy(tz, f.Timezones)
		out[FieldTimezones] = tz
	}
	if f.E164 != nil {
		out[FieldE164] = *f.E164
	}
	if f.International != nil {
		out[FieldInternational] = *f.International
	}
	if f.National != nil {
		out[FieldNational] = *f.National
	}
	return out
}

// Empty reports whether the provider extracted nothing at all.
func (f Fields) Empty() bool {
	return len(f.Items()) == 0
}
