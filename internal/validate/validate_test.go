package validate

import (
	"math"
	"reflect"
	"testing"

	"github.com/trinity-catholic-media/versepin/internal/verse"
)

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name        string
		creds       Credentials
		wantOK      bool
		wantMissing []string
	}{
		{
			name: "all present",
			creds: Credentials{
				GeminiAPIKey:         "key",
				PinterestAccessToken: "token",
				PinterestBoardID:     "board",
			},
			wantOK: true,
		},
		{
			name:        "all missing",
			creds:       Credentials{},
			wantOK:      false,
			wantMissing: []string{"gemini_api_key", "pinterest_access_token", "pinterest_board_id"},
		},
		{
			name: "whitespace counts as missing",
			creds: Credentials{
				GeminiAPIKey:         "key",
				PinterestAccessToken: "   ",
				PinterestBoardID:     "board",
			},
			wantOK:      false,
			wantMissing: []string{"pinterest_access_token"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, missing := CheckCredentials(tt.creds)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(missing, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestConfidence(t *testing.T) {
	const threshold = 0.7

	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"at threshold", 0.7, true},
		{"above threshold", 0.95, true},
		{"exactly one", 1.0, true},
		{"below threshold", 0.69, false},
		{"zero", 0.0, false},
		{"negative", -0.5, false},
		{"above one", 1.5, false},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.value, threshold); got != tt.want {
				t.Errorf("Confidence(%v, %v) = %v, want %v", tt.value, threshold, got, tt.want)
			}
		})
	}
}

func TestConfidenceZeroThreshold(t *testing.T) {
	// Even with a zero threshold the value must stay inside [0,1].
	if !Confidence(0, 0) {
		t.Error("Confidence(0, 0) should be true")
	}
	if Confidence(1.01, 0) {
		t.Error("Confidence(1.01, 0) should be false")
	}
}

func TestRecordComplete(t *testing.T) {
	complete := verse.VerseRecord{
		VerseText:   "കർത്താവ് എന്റെ ഇടയനാകുന്നു",
		Reference:   "Psalm 23:1",
		Title:       "Psalm 23:1",
		Description: "description",
		Confidence:  0.9,
	}

	tests := []struct {
		name        string
		mutate      func(*verse.VerseRecord)
		wantOK      bool
		wantMissing []string
	}{
		{
			name:   "complete record",
			mutate: func(r *verse.VerseRecord) {},
			wantOK: true,
		},
		{
			name:        "empty verse text flagged first",
			mutate:      func(r *verse.VerseRecord) { r.VerseText = "" },
			wantOK:      false,
			wantMissing: []string{"verse_text"},
		},
		{
			name: "missing fields reported in priority order",
			mutate: func(r *verse.VerseRecord) {
				r.Title = ""
				r.VerseText = ""
			},
			wantOK:      false,
			wantMissing: []string{"verse_text", "title"},
		},
		{
			name:        "whitespace-only reference flagged",
			mutate:      func(r *verse.VerseRecord) { r.Reference = "\n  " },
			wantOK:      false,
			wantMissing: []string{"reference"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := complete
			tt.mutate(&rec)
			ok, missing := RecordComplete(rec)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !reflect.DeepEqual(missing, tt.wantMissing) {
				t.Errorf("missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestPublishable(t *testing.T) {
	rec := verse.VerseRecord{
		VerseText:   "text",
		Reference:   "John 3:16",
		Title:       "John 3:16 text",
		Description: "desc",
		Confidence:  0.9,
	}

	if !Publishable(rec, 0.7) {
		t.Error("complete high-confidence record should be publishable")
	}

	low := rec
	low.Confidence = 0.2
	if Publishable(low, 0.7) {
		t.Error("low-confidence record should not be publishable")
	}

	empty := rec
	empty.VerseText = ""
	if Publishable(empty, 0.7) {
		t.Error("record with empty verse text should not be publishable")
	}
}
