package report

import (
	"encoding/json"
	"io"
	"sync"

	apperrors "patchcheck/internal/errors"
	"patchcheck/internal/pipeline"
)

// Record is the JSON shape of one outcome.
type Record struct {
	Game      string `json:"game"`
	Status    string `json:"status"`
	Installed string `json:"installed,omitempty"`
	Latest    string `json:"latest,omitempty"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewRecord converts an outcome to its JSON record.
func NewRecord(o pipeline.Outcome) Record {
	rec := Record{
		Game:      o.Game,
		Status:    o.Status.String(),
		Installed: o.Installed,
		Latest:    o.Latest,
	}
	if err := o.Failure(); err != nil {
		rec.Code = string(apperrors.CodeOf(err))
		rec.Error = Headline(o)
		if o.Err != nil {
			rec.Error = o.Err.Error()
		}
	}
	return rec
}

// JSON writes one JSON object per outcome, newline delimited.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSON creates a JSON reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Report implements pipeline.Reporter.
func (j *JSON) Report(o pipeline.Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(NewRecord(o))
}
