package source

import (
	"context"
	"strings"

	"github.com/tracelight/osint-cli/internal/guidance"
	"github.com/tracelight/osint-cli/internal/model"
)

// ExtraSuspiciousPattern is the Extra key the heuristic provider sets when
// the digit pattern looks synthetic. The aggregator turns it into an
// advisory warning.
const ExtraSuspiciousPattern = "suspicious_pattern"

// HeuristicProvider is an offline pattern analyzer: length and leading-digit
// checks plus synthetic-pattern detection. Cheap and always available, but
// weakly trusted.
type HeuristicProvider struct{}

// NewHeuristicProvider creates the pattern analysis provider.
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

// Name implements Provider.
func (p *HeuristicProvider) Name() model.Source { return model.SourceHeuristic }

// Available implements Provider.
func (p *HeuristicProvider) Available() bool { return true }

// Remote implements Provider.
func (p *HeuristicProvider) Remote() bool { return false }

// Query runs structural heuristics only. It never fails: even a hopeless
// input yields a low-confidence "not plausible" answer.
func (p *HeuristicProvider) Query(_ context.Context, identifier, region string) (model.Fields, float64, error) {
	digits := digitsOnly(identifier)

	fields := model.Fields{Extra: map[string]string{}}
	confidence := 60.0

	plausible := len(digits) >= 7 && len(digits) <= 15
	fields.IsPossible = model.Bool(plausible)
	if !plausible {
		confidence = 25
	}

	if suggested := guidance.SuggestCountry(identifier); suggested != "" {
		fields.Region = model.String(suggested)
	}

	if lt := guessLineType(digits, strings.ToUpper(region)); lt != "" {
		fields.LineType = model.String(lt)
	}

	if flag := syntheticPattern(digits); flag != "" {
		fields.Extra[ExtraSuspiciousPattern] = flag
		confidence = 30
	}

	return fields, confidence, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// guessLineType applies per-country leading-digit conventions to the
// national significant number.
func guessLineType(digits, region string) string {
	switch region {
	case "IN":
		n := strings.TrimPrefix(digits, "91")
		n = strings.TrimPrefix(n, "0")
		if len(n) == 10 && n[0] >= '6' && n[0] <= '9' {
			return "mobile"
		}
	case "GB":
		n := strings.TrimPrefix(digits, "44")
		n = strings.TrimPrefix(n, "0")
		if len(n) == 10 && n[0] == '7' {
			return "mobile"
		}
	case "US", "CA":
		if len(strings.TrimPrefix(digits, "1")) == 10 {
			// NANP does not distinguish mobile by prefix.
			return "fixed_line_or_mobile"
		}
	}
	return ""
}

// syntheticPattern flags digit strings that look fabricated: a single
// repeated digit, a long repeated run, or a long sequential run.
func syntheticPattern(digits string) string {
	if len(digits) < 7 {
		return ""
	}

	allSame := true
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return "single_repeated_digit"
	}

	run := 1
	for i := 1; i < len(digits); i++ {
		if digits[i] == digits[i-1] {
			run++
			if run >= 6 {
				return "repeated_digit_run"
			}
		} else {
			run = 1
		}
	}

	asc, desc := 1, 1
	for i := 1; i < len(digits); i++ {
		if digits[i] == digits[i-1]+1 {
			asc++
			desc = 1
		} else if digits[i] == digits[i-1]-1 {
			desc++
			asc = 1
		} else {
			asc, desc = 1, 1
		}
		if asc >= 8 || desc >= 8 {
			return "sequential_digits"
		}
	}

	return ""
}
