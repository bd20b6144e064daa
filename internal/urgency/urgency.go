// Package urgency flags SOS-like complaints and scores new ones.
//
// Scores use a single 0-100 scale everywhere. A score of 80 is the urgent
// threshold, which is 8 on the 0-10 scale older screens displayed.
package urgency

import "strings"

const (
	// MaxScore is the top of the urgency scale.
	MaxScore = 100
	// UrgentThreshold is the minimum score that makes an open complaint urgent.
	UrgentThreshold = 80
	// MediumThreshold is exceeded by medium-level scores.
	MediumThreshold = 40
)

// Keywords that mark a complaint as an SOS call regardless of score.
var Keywords = []string{"sos", "emergency", "help"}

// Subject is the part of a complaint the classifier looks at.
type Subject struct {
	Text     string
	Score    *int
	Resolved bool
}

// IsUrgent reports whether an open complaint needs immediate attention.
// Resolved complaints are never urgent.
func IsUrgent(s Subject) bool {
	if s.Resolved {
		return false
	}
	if s.Score != nil && Clamp(*s.Score) >= UrgentThreshold {
		return true
	}
	return HasSOSKeyword(s.Text)
}

// HasSOSKeyword reports whether text contains any of Keywords, ignoring case.
func HasSOSKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, k := range Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// Clamp bounds a score to 0..MaxScore.
func Clamp(score int) int {
	switch {
	case score < 0:
		return 0
	case score > MaxScore:
		return MaxScore
	}
	return score
}

// Level is the badge shown next to a complaint.
type Level string

const (
	Low    Level = "Low"
	Medium Level = "Medium"
	High   Level = "High"
)

// LevelOf buckets a score. A missing score is Low.
func LevelOf(score *int) Level {
	if score == nil {
		return Low
	}
	v := Clamp(*score)
	switch {
	case v >= UrgentThreshold:
		return High
	case v > MediumThreshold:
		return Medium
	}
	return Low
}
