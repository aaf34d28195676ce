// Package verse holds the domain types flowing through the
// extraction-validation-publish pipeline and the error taxonomy shared by
// its stages.
package verse

// PromptVersion identifies the extraction prompt that produced a
// RawExtraction. Bumped whenever the prompt template changes shape.
const PromptVersion = "verse-extract/v2"

// RawExtraction is the unparsed model output from one extraction call.
// Retained only for diagnostics; the formatter turns it into a VerseRecord.
type RawExtraction struct {
	Text          string `json:"text"`
	PromptVersion string `json:"prompt_version"`
}

// VerseRecord is the canonical structured result of an extraction.
// It is always fully populated: an empty string means "unknown", a field is
// never absent. Confidence is a float in [0,1]; 0.0 means the model output
// could not be trusted and forces human review.
type VerseRecord struct {
	VerseText   string  `json:"verse_text" yaml:"verse_text"`
	Reference   string  `json:"reference" yaml:"reference"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Confidence  float64 `json:"confidence" yaml:"confidence"`
}

// PinRequest is the deterministic mapping of a publishable VerseRecord onto
// the remote pin-creation API. It is only ever built from a record that
// passed the completeness and confidence gates.
type PinRequest struct {
	BoardID     string
	ImageData   []byte
	ContentType string
	Title       string
	Description string
	AltText     string
	Link        string
}

// PinStatus is the terminal state of one publish attempt sequence.
type PinStatus string

const (
	PinSucceeded PinStatus = "succeeded"
	PinFailed    PinStatus = "failed"
)

// PinResult is the terminal value of a publish. On success PinID carries
// the remote identifier; on failure Reason carries the classified error.
type PinResult struct {
	Status   PinStatus `json:"status"`
	PinID    string    `json:"pin_id,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Attempts int       `json:"attempts"`
}
