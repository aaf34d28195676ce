package format

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

const testLink = "https://example.com/channel"

func rawInput(text string) verse.RawExtraction {
	return verse.RawExtraction{Text: text, PromptVersion: verse.PromptVersion}
}

func TestFormatWellFormedJSON(t *testing.T) {
	f := New(testLink)
	raw := rawInput(`{"verse_text": "യഹോവ എന്റെ ഇടയനാകുന്നു", "reference": "John 3:16", "confidence": 0.95}`)

	rec, err := f.Format(raw)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if rec.VerseText != "യഹോവ എന്റെ ഇടയനാകുന്നു" {
		t.Errorf("verse text = %q", rec.VerseText)
	}
	if rec.Reference != "John 3:16" {
		t.Errorf("reference = %q", rec.Reference)
	}
	if rec.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", rec.Confidence)
	}
	if rec.Title == "" || rec.Description == "" {
		t.Error("derived fields should be populated")
	}
}

func TestFormatJSONWrappedInProse(t *testing.T) {
	f := New(testLink)
	raw := rawInput("Sure! Here is the extraction:\n```json\n" +
		`{"verse_text": "Test verse", "reference": "Ps 23:1", "confidence": 0.9}` +
		"\n```\nLet me know if you need anything else.")

	rec, err := f.Format(raw)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if rec.VerseText != "Test verse" || rec.Reference != "Ps 23:1" {
		t.Errorf("record = %+v", rec)
	}
}

func TestFormatRepairsSloppyJSON(t *testing.T) {
	f := New(testLink)
	// Unquoted keys, single quotes, and a trailing comma: the three defects
	// the repair pass exists for, all at once.
	raw := rawInput("Here you go: {verse_text: 'Test', reference: 'Ps 23:1', confidence: 0.8,}")

	rec, err := f.Format(raw)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if rec.VerseText != "Test" {
		t.Errorf("verse text = %q, want Test", rec.VerseText)
	}
	if rec.Reference != "Ps 23:1" {
		t.Errorf("reference = %q, want Ps 23:1", rec.Reference)
	}
	if rec.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8", rec.Confidence)
	}
}

func TestFormatNoStructureFound(t *testing.T) {
	f := New(testLink)
	inputs := []string{
		"I could not find any Bible verse in this image.",
		"",
		"unbalanced { opening only",
	}
	for _, input := range inputs {
		_, err := f.Format(rawInput(input))
		if !errors.Is(err, verse.ErrNoStructureFound) {
			t.Errorf("input %q: err = %v, want ErrNoStructureFound", input, err)
		}
	}
}

func TestFormatMalformedJSONKeepsRawText(t *testing.T) {
	f := New(testLink)
	input := `{"verse_text": this is not json at all ---}`

	_, err := f.Format(rawInput(input))
	if !errors.Is(err, verse.ErrMalformedJSON) {
		t.Fatalf("err = %v, want ErrMalformedJSON", err)
	}
	raw, ok := verse.RawPayload(err)
	if !ok {
		t.Fatal("malformed error should carry the raw payload")
	}
	if raw != input {
		t.Errorf("raw payload = %q, want original input", raw)
	}
}

func TestCoerceConfidence(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"in range", 0.5, 0.5},
		{"clamped high", 1.5, 1.0},
		{"clamped low", -0.2, 0.0},
		{"numeric string", "0.8", 0.8},
		{"word string", "high", 0.0},
		{"nil", nil, 0.0},
		{"bool", true, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coerceConfidence(tt.value); got != tt.want {
				t.Errorf("coerceConfidence(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatNonNumericConfidenceForcesReview(t *testing.T) {
	f := New(testLink)
	raw := rawInput(`{"verse_text": "Test", "reference": "Ps 23:1", "confidence": "high"}`)

	rec, err := f.Format(raw)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	// Trust nothing: the record still comes back, but with zero confidence
	// so it can never pass the publish gate without human review.
	if rec.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", rec.Confidence)
	}
	if rec.VerseText != "Test" {
		t.Errorf("verse text = %q, record should still be populated", rec.VerseText)
	}
}

func TestDeriveTitleTruncatesAtWhitespace(t *testing.T) {
	long := strings.Repeat("word ", 40)
	title := deriveTitle("John 3:16", long)

	if utf8.RuneCountInString(title) > 100 {
		t.Errorf("title length = %d runes, want <= 100", utf8.RuneCountInString(title))
	}
	if strings.HasSuffix(title, "wor") || strings.HasSuffix(title, "wo") {
		t.Errorf("title %q truncated mid-word", title)
	}
	if !strings.HasPrefix(title, "John 3:16") {
		t.Errorf("title %q should start with the reference", title)
	}
}

func TestDeriveTitleShortInputUnchanged(t *testing.T) {
	if got := deriveTitle("Ps 23:1", "short verse"); got != "Ps 23:1 short verse" {
		t.Errorf("title = %q", got)
	}
	if got := deriveTitle("", "only verse"); got != "only verse" {
		t.Errorf("title = %q", got)
	}
}

func TestDeriveDescription(t *testing.T) {
	f := New(testLink)
	desc := f.deriveDescription("verse body", "John 3:16")

	for _, want := range []string{"verse body", "John 3:16", testLink} {
		if !strings.Contains(desc, want) {
			t.Errorf("description %q missing %q", desc, want)
		}
	}

	noLink := New("")
	if strings.Contains(noLink.deriveDescription("verse", "ref"), "channel") {
		t.Error("empty community link should disable the suffix")
	}
}

func TestNormalizeCollapsesBlankLines(t *testing.T) {
	in := "line one  \r\n\r\n\r\n\r\nline two\n\n\n\nline three\n\n"
	want := "line one\n\nline two\n\nline three"
	if got := normalize(in); got != want {
		t.Errorf("normalize = %q, want %q", got, want)
	}
}

func TestBraceSpanIgnoresBracesInStrings(t *testing.T) {
	span, ok := braceSpan(`prefix {"a": "value with } brace", "b": 1} suffix`)
	if !ok {
		t.Fatal("span not found")
	}
	if span != `{"a": "value with } brace", "b": 1}` {
		t.Errorf("span = %q", span)
	}
}
