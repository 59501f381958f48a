package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cukaiku/tax-engine/engine"
	"github.com/cukaiku/tax-engine/filing"
	"github.com/goccy/go-json"
)

// Format is an output format.
type Format string

const (
	// FormatJSON is the machine-readable result
	FormatJSON Format = "json"

	// FormatTable is a terminal summary
	FormatTable Format = "table"

	// FormatGuide is the paginated BM form guide
	FormatGuide Format = "guide"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatTable, FormatGuide}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// Report is everything a renderer needs for one computation.
type Report struct {
	Result     *engine.ComputeResult      `json:"result"`
	Settlement filing.Settlement          `json:"settlement"`
	TopMissed  []engine.MissedOpportunity `json:"top_missed,omitempty"`
}

// NewReport settles a result against the answers' PCB.
func NewReport(r *engine.ComputeResult, a engine.Answers) *Report {
	return &Report{
		Result:     r,
		Settlement: filing.SettleAnswers(r, a),
		TopMissed:  r.TopMissed(3),
	}
}

// Formatter produces output in a specific format.
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the report to w
	Render(w io.Writer, rep *Report) error
}

// NewFormatter returns the formatter for f.
func NewFormatter(f Format) (Formatter, error) {
	switch f {
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatTable:
		return tableFormatter{}, nil
	case FormatGuide:
		return guideFormatter{pageLines: DefaultPageLines}, nil
	}
	return nil, fmt.Errorf("%q: %w", f, ErrUnknownFormat)
}

type jsonFormatter struct{}

func (jsonFormatter) Format() Format { return FormatJSON }

func (jsonFormatter) Render(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

type guideFormatter struct {
	pageLines int
}

func (guideFormatter) Format() Format { return FormatGuide }

func (f guideFormatter) Render(w io.Writer, rep *Report) error {
	return NewGuide(rep.Result, &rep.Settlement, f.pageLines).Render(w)
}
