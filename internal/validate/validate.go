// Package validate holds the pure gate predicates applied before a record
// is allowed anywhere near the remote service. Every function is total:
// any input yields a boolean plus a deterministic diagnostic list.
package validate

import (
	"math"
	"strings"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

// Credentials is the shape-checked secret set. Presence only; nothing here
// talks to the remote services to verify the values.
type Credentials struct {
	GeminiAPIKey         string
	PinterestAccessToken string
	PinterestBoardID     string
}

// credentialOrder fixes the reporting order so error messages are stable.
var credentialOrder = []struct {
	name  string
	value func(Credentials) string
}{
	{"gemini_api_key", func(c Credentials) string { return c.GeminiAPIKey }},
	{"pinterest_access_token", func(c Credentials) string { return c.PinterestAccessToken }},
	{"pinterest_board_id", func(c Credentials) string { return c.PinterestBoardID }},
}

// CheckCredentials reports whether every required credential is a non-empty
// string, returning the names of the missing ones in a fixed order.
func CheckCredentials(c Credentials) (bool, []string) {
	var missing []string
	for _, field := range credentialOrder {
		if strings.TrimSpace(field.value(c)) == "" {
			missing = append(missing, field.name)
		}
	}
	return len(missing) == 0, missing
}

// Confidence reports whether value is a finite number in [0,1] that meets
// the minimum publish threshold. NaN, infinities, and out-of-range values
// are never acceptable.
func Confidence(value, threshold float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	if value < 0 || value > 1 {
		return false
	}
	return value >= threshold
}

// recordOrder is the field-priority list for completeness reporting.
var recordOrder = []struct {
	name  string
	value func(verse.VerseRecord) string
}{
	{"verse_text", func(r verse.VerseRecord) string { return r.VerseText }},
	{"reference", func(r verse.VerseRecord) string { return r.Reference }},
	{"title", func(r verse.VerseRecord) string { return r.Title }},
	{"description", func(r verse.VerseRecord) string { return r.Description }},
}

// RecordComplete reports whether every required record field is non-empty,
// returning missing field names in priority order.
func RecordComplete(rec verse.VerseRecord) (bool, []string) {
	var missing []string
	for _, field := range recordOrder {
		if strings.TrimSpace(field.value(rec)) == "" {
			missing = append(missing, field.name)
		}
	}
	return len(missing) == 0, missing
}

// Publishable combines the completeness and confidence gates. A record may
// only reach the publisher when this returns true.
func Publishable(rec verse.VerseRecord, minConfidence float64) bool {
	ok, _ := RecordComplete(rec)
	return ok && Confidence(rec.Confidence, minConfidence)
}
