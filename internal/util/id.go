package util

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a random identifier for request correlation and token ids.
func NewID() string {
	return uuid.NewString()
}

// Now is the clock used by services; tests may replace it.
var Now = func() time.Time {
	return time.Now().UTC()
}

// NormalizeName trims and collapses inner whitespace; it returns "" for blank input.
func NormalizeName(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// DisplayName prefers the full name and otherwise title-cases the local part of
// the username ("asha.k@rail.in" -> "Asha K").
func DisplayName(fullName, username string) string {
	if name := NormalizeName(fullName); name != "" {
		return name
	}
	local := strings.TrimSpace(username)
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ").Replace(local)

	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return "User"
	}
	return strings.Join(words, " ")
}
