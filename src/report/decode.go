package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
)

type envelope struct {
	OK         bool            `json:"ok"`
	AnalysisID string          `json:"analysis_id"`
	HasMD      bool            `json:"has_md"`
	Risk       json.RawMessage `json:"risk"`
	Error      string          `json:"error"`
}

// DecodeAnalysis decodes an analyze response. It does not validate it; call
// Validate on the result.
func DecodeAnalysis(r io.Reader) (*AnalysisResult, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding analysis response: %w", err)
	}

	risk, err := decodeRisk(env.Risk)
	if err != nil {
		return nil, err
	}

	return &AnalysisResult{
		OK:         env.OK,
		AnalysisID: env.AnalysisID,
		HasMD:      env.HasMD,
		Risk:       risk,
		Error:      env.Error,
	}, nil
}

// DecodeReport decodes a bare risk report, as served by the JSON download
// endpoint or saved to disk.
func DecodeReport(r io.Reader) (*RiskReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	risk, err := decodeRisk(data)
	if err != nil {
		return nil, err
	}
	if risk == nil {
		return nil, ErrMissingRisk
	}
	return risk, nil
}

// LooksLikeAnalysis reports whether data is an analyze envelope rather than
// a bare report.
func LooksLikeAnalysis(data []byte) bool {
	var probe struct {
		Risk json.RawMessage `json:"risk"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return len(probe.Risk) > 0
}

// decodeRisk unwraps the {"raw_text": "<json>"} form some pipeline runs emit.
// If raw_text does not parse, the payload is decoded as it stands.
func decodeRisk(raw []byte) (*RiskReport, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var wrapped struct {
		RawText *string `json:"raw_text"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.RawText != nil {
		var inner RiskReport
		if err := json.Unmarshal([]byte(*wrapped.RawText), &inner); err == nil {
			inner.normalize()
			return &inner, nil
		}
	}

	var rep RiskReport
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, fmt.Errorf("decoding risk report: %w", err)
	}
	rep.normalize()
	return &rep, nil
}

// normalize canonicalises the case of known grades. Unknown values are left
// as sent so presentation can fall back to its neutral style.
func (r *RiskReport) normalize() {
	if l, err := ParseRiskLevel(string(r.RiskLevel)); err == nil {
		r.RiskLevel = l
	}
	for i := range r.TopFindings {
		if sev, err := ParseSeverity(string(r.TopFindings[i].Severity)); err == nil {
			r.TopFindings[i].Severity = sev
		}
	}
}
