// Package model defines the shared data types for phone intelligence
// aggregation: per-source results, merged records, confidence levels, and
// the structured error taxonomy surfaced to callers.
package model

import "fmt"

// Source identifies one intelligence provider.
type Source string

const (
	// SourceLocal is the bundled libphonenumber parser. Offline, deterministic.
	SourceLocal Source = "libphonenumber"
	// SourceHeuristic is the offline pattern analyzer. Low trust.
	SourceHeuristic Source = "pattern"
	// SourceNumVerify is the NumVerify validation API.
	SourceNumVerify Source = "numverify"
	// SourceAbstract is the AbstractAPI phone validation API.
	SourceAbstract Source = "abstractapi"
	// SourceVeriphone is the Veriphone verification API.
	SourceVeriphone Source = "veriphone"
)

// AllSources lists every known source in default dispatch order.
var AllSources = []Source{
	SourceLocal,
	SourceHeuristic,
	SourceNumVerify,
	SourceAbstract,
	SourceVeriphone,
}

// ParseSource converts a string tag into a known Source.
func ParseSource(s string) (Source, error) {
	for _, src := range AllSources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("unknown source %q", s)
}

// Valid reports whether the source is one of the known providers.
func (s Source) Valid() bool {
	_, err := ParseSource(string(s))
	return err == nil
}

func (s Source) String() string {
	return string(s)
}
