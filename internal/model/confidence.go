package model

// Level is a categorical confidence band.
type Level string

const (
	LevelCritical   Level = "critical"
	LevelHigh       Level = "high"
	LevelMedium     Level = "medium"
	LevelLow        Level = "low"
	LevelVeryLow    Level = "very_low"
	LevelUnreliable Level = "unreliable"
)

// ClassifyConfidence maps a 0-100 score to a confidence level. Band lower
// bounds are inclusive: 80.0 is high, 79.9 is medium.
func ClassifyConfidence(score float64) Level {
	switch {
	case score >= 95:
		return LevelCritical
	case score >= 80:
		return LevelHigh
	case score >= 60:
		return LevelMedium
	case score >= 40:
		return LevelLow
	case score >= 20:
		return LevelVeryLow
	default:
		return LevelUnreliable
	}
}
