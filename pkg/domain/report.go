package domain

import (
	"bytes"
	"encoding/json"
)

// AnalysisReport is the result of an analysis submission. The board treats
// it as opaque; the known fields are only used for display.
type AnalysisReport struct {
	Message        string   `json:"message,omitempty"`
	PlayersFetched int      `json:"players_fetched,omitempty"`
	Players        []Player `json:"players,omitempty"`
	Analysis       string   `json:"analysis,omitempty"`
	Winner         string   `json:"winner,omitempty"`
	Score          string   `json:"score,omitempty"`

	// Raw is the full response body as received.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw body alongside the decoded fields. Unknown
// shapes still decode; only Raw is populated then.
func (r *AnalysisReport) UnmarshalJSON(data []byte) error {
	type plain AnalysisReport
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		// Not an object we understand: keep it raw.
		*r = AnalysisReport{}
	} else {
		*r = AnalysisReport(p)
	}
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Pretty returns the raw report indented for display or copying.
func (r AnalysisReport) Pretty() string {
	if len(r.Raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return string(r.Raw)
	}
	return buf.String()
}
