package domain

// Intent is a label assigned to an utterance by the recognizer.
type Intent string

// The closed set of intents the flows dispatch on. The recognizer may
// return others; they fall through to the unhandled branch.
const (
	IntentFileName      Intent = "FileName"
	IntentEffectiveDate Intent = "EffectiveDate"
	IntentIssue         Intent = "Issue"
	IntentNone          Intent = "None"
)

// IntentScore pairs an intent with its confidence.
type IntentScore struct {
	Intent Intent  `json:"intent"`
	Score  float64 `json:"score"`
}

// Entity is a labeled span extracted from the utterance.
type Entity struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Offset   int    `json:"offset,omitempty"`
	Length   int    `json:"length,omitempty"`
}

// Recognition is the normalized result of one recognizer call. Intents
// is an ordered slice, not a map: it preserves the order the service
// returned, which is what makes TopIntent deterministic under ties.
// A Recognition is never mutated after creation.
type Recognition struct {
	Text        string        `json:"text"`
	AlteredText string        `json:"altered_text,omitempty"`
	Intents     []IntentScore `json:"intents"`
	Entities    []Entity      `json:"entities"`
}

// TopIntent returns the intent with the strictly greatest score. Ties
// keep the earliest entry. When no intent scores above zero it returns
// (IntentNone, 0).
func (r *Recognition) TopIntent() (Intent, float64) {
	top := IntentNone
	max := 0.0
	for _, is := range r.Intents {
		if is.Score > max {
			top = is.Intent
			max = is.Score
		}
	}
	return top, max
}

// Entity returns the text of the first entity with the given category,
// or the empty string.
func (r *Recognition) Entity(category string) string {
	for _, e := range r.Entities {
		if e.Category == category {
			return e.Text
		}
	}
	return ""
}
