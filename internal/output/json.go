package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dotcommander/schedlint/internal/baseline"
	"github.com/dotcommander/schedlint/internal/report"
)

// Version is stamped into machine-readable output. Overridden at build time.
var Version = "dev"

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	w      io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{w: w, indent: indent}
}

// JSONReport represents the complete JSON report structure. There is no
// timestamp so identical input yields identical bytes.
type JSONReport struct {
	Header   JSONHeader              `json:"header"`
	Summary  JSONSummary             `json:"summary"`
	Reports  []*report.QualityReport `json:"reports"`
	Deltas   []baseline.Delta        `json:"deltas,omitempty"`
	Failures []LoadFailure           `json:"failures,omitempty"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	Schedules      int `json:"schedules"`
	FailedToLoad   int `json:"failed_to_load"`
	FailBelow      int `json:"fail_below"`
	BelowThreshold int `json:"below_threshold"`
	RulesFailed    int `json:"rules_failed"`
}

// JSONDigest wraps a digest with the report header.
type JSONDigest struct {
	Header JSONHeader     `json:"header"`
	Digest *report.Digest `json:"digest"`
}

func header() JSONHeader {
	return JSONHeader{Tool: Tool, Version: Version}
}

// Format formats the assessment summary as JSON
func (f *JSONFormatter) Format(s *Summary) error {
	out := JSONReport{
		Header: header(),
		Summary: JSONSummary{
			Schedules:      len(s.Reports),
			FailedToLoad:   len(s.Failures),
			FailBelow:      s.FailBelow,
			BelowThreshold: len(s.BelowThreshold()),
		},
		Reports:  s.Reports,
		Deltas:   s.Deltas,
		Failures: s.Failures,
	}
	if out.Reports == nil {
		out.Reports = []*report.QualityReport{}
	}
	for _, r := range s.Reports {
		out.Summary.RulesFailed += len(r.Failed())
	}
	return f.write(out)
}

// FormatDigest formats a batch digest as JSON
func (f *JSONFormatter) FormatDigest(d *report.Digest) error {
	return f.write(JSONDigest{Header: header(), Digest: d})
}

func (f *JSONFormatter) write(v any) error {
	var (
		data []byte
		err  error
	)
	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	data = append(data, '\n')
	if _, err := f.w.Write(data); err != nil {
		return fmt.Errorf("error writing JSON: %w", err)
	}
	return nil
}
