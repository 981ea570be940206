package output

import (
	"fmt"
	"io"

	"github.com/dotcommander/schedlint/internal/report"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// PrometheusFormatter writes reports in the Prometheus text exposition
// format, suitable for the node_exporter textfile collector.
type PrometheusFormatter struct {
	w io.Writer
}

// NewPrometheusFormatter creates a new PrometheusFormatter
func NewPrometheusFormatter(w io.Writer) *PrometheusFormatter {
	return &PrometheusFormatter{w: w}
}

const metricPrefix = "schedlint_"

// family collects gauge samples under one metric name.
type family struct {
	mf *dto.MetricFamily
}

func newGauge(name, help string) *family {
	typ := dto.MetricType_GAUGE
	return &family{mf: &dto.MetricFamily{
		Name: ptr(metricPrefix + name),
		Help: ptr(help),
		Type: &typ,
	}}
}

// add appends a sample. labels alternate name, value.
func (f *family) add(value float64, labels ...string) {
	m := &dto.Metric{Gauge: &dto.Gauge{Value: ptr(value)}}
	for i := 0; i+1 < len(labels); i += 2 {
		m.Label = append(m.Label, &dto.LabelPair{Name: ptr(labels[i]), Value: ptr(labels[i+1])})
	}
	f.mf.Metric = append(f.mf.Metric, m)
}

// Format writes one sample per report, category and rule.
func (f *PrometheusFormatter) Format(s *Summary) error {
	composite := newGauge("composite_score", "Final schedule quality composite in [0,1].")
	score := newGauge("score", "Final schedule quality score in [0,100].")
	category := newGauge("category_score", "Per-category rollup score in [0,1].")
	ruleScore := newGauge("rule_score", "Normalized rule sub-score in [0,1].")
	observed := newGauge("rule_observed", "Observed rule measurement.")
	threshold := newGauge("rule_threshold", "Resolved rule threshold.")
	failures := newGauge("load_failures", "Schedule files that could not be assessed.")

	for _, r := range s.Reports {
		project := r.ProjectID
		composite.add(r.Composite, "project", project, "tier", r.Tier)
		score.add(float64(r.Score), "project", project)
		for _, c := range r.Categories {
			category.add(c.Score, "project", project, "category", string(c.Category))
		}
		for _, rr := range r.Results() {
			labels := []string{"project", project, "rule", rr.RuleID, "family", string(rr.Family)}
			ruleScore.add(rr.Score, labels...)
			observed.add(rr.Observed, labels...)
			threshold.add(float64(rr.Threshold), labels...)
		}
	}
	failures.add(float64(len(s.Failures)))

	return f.write(composite, score, category, ruleScore, observed, threshold, failures)
}

// FormatDigest writes portfolio level gauges.
func (f *PrometheusFormatter) FormatDigest(d *report.Digest) error {
	projects := newGauge("projects", "Schedules in the digest.")
	mean := newGauge("mean_score", "Mean schedule score in [0,100].")
	tiers := newGauge("tier_projects", "Schedules per quality tier.")
	violated := newGauge("rule_violations", "Schedules failing a rule.")

	projects.add(float64(d.Projects))
	mean.add(d.MeanScore)
	for _, t := range report.Tiers {
		tiers.add(float64(d.TierCounts[t]), "tier", t)
	}
	for _, v := range d.MostViolated {
		violated.add(float64(v.Projects), "rule", v.RuleID)
	}

	return f.write(projects, mean, tiers, violated)
}

func (f *PrometheusFormatter) write(families ...*family) error {
	for _, fam := range families {
		if len(fam.mf.Metric) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(f.w, fam.mf); err != nil {
			return fmt.Errorf("error writing metric %s: %w", fam.mf.GetName(), err)
		}
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
