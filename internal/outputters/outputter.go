package outputters

import (
	"fmt"
	"io"
	"os"

	"github.com/dotcommander/schedlint/internal/config"
	"github.com/dotcommander/schedlint/internal/output"
	"github.com/dotcommander/schedlint/internal/report"
)

// Outputter handles output formatting
type Outputter struct {
	config *config.Config
	stdout io.Writer
}

// NewOutputter creates a new Outputter
func NewOutputter(config *config.Config) *Outputter {
	return &Outputter{
		config: config,
		stdout: os.Stdout,
	}
}

// Format writes the assessment summary using the configured format
func (o *Outputter) Format(summary *output.Summary) error {
	if summary.Root == "" {
		summary.Root = o.config.Root
	}
	return o.run(func(f output.Formatter) error { return f.Format(summary) })
}

// FormatDigest writes a batch digest using the configured format
func (o *Outputter) FormatDigest(digest *report.Digest) error {
	return o.run(func(f output.Formatter) error { return f.FormatDigest(digest) })
}

func (o *Outputter) run(fn func(output.Formatter) error) error {
	w, closeFn, err := o.writer()
	if err != nil {
		return err
	}

	f, err := o.formatter(w)
	if err != nil {
		closeFn()
		return err
	}

	if err := fn(f); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

// writer opens the configured output file, or stdout when none is set.
func (o *Outputter) writer() (io.Writer, func() error, error) {
	if o.config.Output == "" {
		return o.stdout, func() error { return nil }, nil
	}
	file, err := os.Create(o.config.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("error writing to file %s: %w", o.config.Output, err)
	}
	return file, file.Close, nil
}

// formatter creates the formatter for the configured format
func (o *Outputter) formatter(w io.Writer) (output.Formatter, error) {
	switch o.config.Format {
	case "", "console":
		return output.NewConsoleFormatter(w, o.config.Quiet, o.config.Verbose), nil
	case "json":
		return output.NewJSONFormatter(w, true), nil
	case "markdown":
		return output.NewMarkdownFormatter(w, o.config.Verbose), nil
	case "prometheus":
		return output.NewPrometheusFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", o.config.Format)
	}
}
