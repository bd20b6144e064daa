package urgency

import (
	"regexp"
	"strings"
)

// Priority is the coarse severity a department or classifier assigns.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// General is the fallback department.
const General = "General"

// Departments known to the triage desk, indexed the way the classifier model
// reports numeric categories.
var Departments = []string{
	"Catering", "Cleanliness", "Coach", "Electrical", General,
	"Maintenance", "Medical", "Security", "Ticketing", "Water",
}

// Ordered: the first matching group wins. A keyword must start a word;
// keywords of three letters or fewer must be the whole word, so "rob" does not
// fire on "problem" nor "ac" on "place".
var departmentKeywords = []struct {
	department string
	keywords   []string
}{
	{"Security", []string{"security", "theft", "thief", "steal", "stole", "snatch", "rob", "robbed", "robbery", "fight", "harass", "unsafe", "police", "rpf", "sos"}},
	{"Medical", []string{"medical", "doctor", "ambulance", "heart attack", "injur", "blood", "faint", "poison"}},
	{"Water", []string{"water", "drinking", "tap", "taps"}},
	{"Cleanliness", []string{"clean", "dirty", "toilet", "restroom", "sanitation", "garbage", "smell"}},
	{"Catering", []string{"food", "catering", "meal", "vendor"}},
	{"Electrical", []string{"light", "fan", "fans", "charging", "socket", "electric", "power"}},
	{"Coach", []string{"coach", "berth", "seat", "window", "door", "ac"}},
	{"Ticketing", []string{"ticket", "refund", "pnr", "reservation", "booking"}},
	{"Maintenance", []string{"repair", "maintenance", "broken", "damage", "leak"}},
}

type departmentRule struct {
	department string
	pattern    *regexp.Regexp
}

var departmentRules = compileDepartmentRules()

func compileDepartmentRules() []departmentRule {
	rules := make([]departmentRule, 0, len(departmentKeywords))
	for _, group := range departmentKeywords {
		alts := make([]string, 0, len(group.keywords))
		for _, k := range group.keywords {
			alt := regexp.QuoteMeta(k)
			if len(k) <= 3 {
				alt += `\b`
			}
			alts = append(alts, alt)
		}
		rules = append(rules, departmentRule{
			department: group.department,
			pattern:    regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)`),
		})
	}
	return rules
}

// InferDepartment guesses the responsible department from complaint text.
func InferDepartment(text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return General
	}
	for _, rule := range departmentRules {
		if rule.pattern.MatchString(lower) {
			return rule.department
		}
	}
	return General
}

// DepartmentAt maps a classifier category index to a department.
func DepartmentAt(index int) string {
	if index < 0 || index >= len(Departments) {
		return General
	}
	return Departments[index]
}

// PriorityFor returns the default priority of a department.
func PriorityFor(department string) Priority {
	switch department {
	case "Medical", "Security":
		return PriorityHigh
	case "Electrical", "Coach", "Maintenance", "Water":
		return PriorityMedium
	}
	return PriorityLow
}

// ScoreFor converts a priority into an urgency score.
func ScoreFor(p Priority) int {
	switch p {
	case PriorityHigh:
		return 95
	case PriorityMedium:
		return 70
	}
	return 35
}

// IsGeneral reports whether department is empty or the catch-all.
func IsGeneral(department string) bool {
	d := strings.TrimSpace(department)
	return d == "" || strings.EqualFold(d, General)
}

// Assessment is the triage result for a new complaint.
type Assessment struct {
	Department string
	Priority   Priority
	Score      int
	Source     string
}

// Assess triages text with the keyword rules only.
func Assess(text string) Assessment {
	dept := InferDepartment(text)
	p := PriorityFor(dept)
	return Assessment{Department: dept, Priority: p, Score: ScoreFor(p), Source: "rules"}
}
