// Package format structures raw model output into a canonical VerseRecord.
// The model is expected to return JSON but routinely wraps it in prose or
// code fences and takes liberties with quoting, so parsing is a two-phase
// affair: isolate the first balanced-brace span, then parse strictly with
// one repair attempt. On failure the raw text rides along for review;
// no field value is ever guessed.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

const maxTitleLen = 100

// Formatter derives pin-ready records from raw extractions. The community
// link is injected configuration, never hard-coded.
type Formatter struct {
	communityLink string
}

// New returns a Formatter that appends the given community link to every
// derived description. An empty link disables the suffix.
func New(communityLink string) *Formatter {
	return &Formatter{communityLink: communityLink}
}

// Format parses raw model output into a fully-populated VerseRecord.
// Empty strings mark unknown fields; no field is ever absent.
func (f *Formatter) Format(raw verse.RawExtraction) (verse.VerseRecord, error) {
	span, ok := braceSpan(raw.Text)
	if !ok {
		return verse.VerseRecord{}, verse.WithRaw(
			fmt.Errorf("%w (prompt %s)", verse.ErrNoStructureFound, raw.PromptVersion),
			raw.Text,
		)
	}

	fields, err := parseWithRepair(span)
	if err != nil {
		return verse.VerseRecord{}, verse.WithRaw(
			fmt.Errorf("%w: %v", verse.ErrMalformedJSON, err),
			raw.Text,
		)
	}

	verseText := normalize(stringField(fields, "verse_text"))
	reference := normalize(stringField(fields, "reference"))

	return verse.VerseRecord{
		VerseText:   verseText,
		Reference:   reference,
		Title:       deriveTitle(reference, verseText),
		Description: f.deriveDescription(verseText, reference),
		Confidence:  coerceConfidence(fields["confidence"]),
	}, nil
}

// braceSpan returns the first balanced {...} span in text, skipping brace
// characters inside double-quoted strings.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// parseWithRepair parses span as JSON, attempting one repair pass on
// failure. The repair fixes the defects models actually produce: single
// quotes, unquoted keys, and trailing commas.
func parseWithRepair(span string) (map[string]interface{}, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(span), &fields); err == nil {
		return fields, nil
	}

	repaired := repairJSON(span)
	if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

var (
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

func repairJSON(span string) string {
	repaired := strings.ReplaceAll(span, "'", `"`)
	repaired = bareKeyRe.ReplaceAllString(repaired, `$1"$2":`)
	repaired = trailingCommaRe.ReplaceAllString(repaired, `$1`)
	return repaired
}

func stringField(fields map[string]interface{}, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// coerceConfidence forces the confidence value into [0,1]. Out-of-range
// numbers are clamped; anything non-numeric defaults to 0.0 so the record
// always fails the publish gate and lands in human review instead of
// being silently published.
func coerceConfidence(value interface{}) float64 {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0.0
		}
		f = parsed
	default:
		return 0.0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0.0
	}
	if f < 0 {
		return 0.0
	}
	if f > 1 {
		return 1.0
	}
	return f
}

// deriveTitle combines the reference with the opening of the verse text,
// truncated to maxTitleLen runes at a whitespace boundary, never mid-word.
func deriveTitle(reference, verseText string) string {
	title := strings.TrimSpace(reference)
	if verseText != "" {
		if title != "" {
			title += " "
		}
		title += verseText
	}

	runes := []rune(title)
	if len(runes) <= maxTitleLen {
		return title
	}

	for i := maxTitleLen; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return strings.TrimSpace(string(runes[:i]))
		}
	}
	// A single word longer than the limit; a hard cut is the only option.
	return strings.TrimSpace(string(runes[:maxTitleLen]))
}

// deriveDescription concatenates the verse, its reference, and the
// community-link suffix, separated by blank lines.
func (f *Formatter) deriveDescription(verseText, reference string) string {
	parts := make([]string, 0, 3)
	if verseText != "" {
		parts = append(parts, verseText)
	}
	if reference != "" {
		parts = append(parts, reference)
	}
	if f.communityLink != "" {
		parts = append(parts, "Stay inspired daily! Follow our channel for the latest Bible verses: "+f.communityLink)
	}
	return normalize(strings.Join(parts, "\n\n"))
}

var blankLinesRe = regexp.MustCompile(`\n{3,}`)

// normalize trims the string, folds Windows line endings, strips trailing
// whitespace per line, and collapses runs of blank lines.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	s = strings.Join(lines, "\n")
	s = blankLinesRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
