// Package report renders per-input parse results and the run summary.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/ndparse/internal/diagnostics"
)

// Format determines how summaries are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

// FileResult is the outcome of parsing one input.
type FileResult struct {
	Input    string
	Shape    []int
	Elements int
	// Value is the nested array, or the selection from it.
	Value       any
	Diagnostics []diagnostics.Issue
	// Err is set when the input could not be parsed for reasons other than
	// diagnostics, or when the parse succeeded but the input was unusable.
	Err      error
	Duration time.Duration
}

func (r FileResult) Success() bool {
	return r.Err == nil && len(r.Diagnostics) == 0
}

// Summary aggregates outcomes across all inputs of one run.
type Summary struct {
	RunID    string
	Files    []FileResult
	Parsed   int
	Failed   int
	ByCode   map[diagnostics.Code]int
	Duration time.Duration
}

func NewSummary(runID string) *Summary {
	return &Summary{RunID: runID, ByCode: make(map[diagnostics.Code]int)}
}

// Add records one input result into the summary.
func (s *Summary) Add(result FileResult) {
	if s.ByCode == nil {
		s.ByCode = make(map[diagnostics.Code]int)
	}

	for _, issue := range result.Diagnostics {
		s.ByCode[issue.Code]++
	}
	if result.Success() {
		s.Parsed++
	} else {
		s.Failed++
	}
	s.Files = append(s.Files, result)
}

func (s *Summary) Total() int {
	return len(s.Files)
}

func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}

type fileDoc struct {
	Input       string              `json:"input" yaml:"input"`
	Success     bool                `json:"success" yaml:"success"`
	Shape       []int               `json:"shape,omitempty" yaml:"shape,omitempty"`
	Elements    int                 `json:"elements" yaml:"elements"`
	Value       any                 `json:"value,omitempty" yaml:"value,omitempty"`
	Diagnostics []diagnostics.Issue `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
	DurationMS  int64               `json:"duration_ms" yaml:"duration_ms"`
}

type summaryDoc struct {
	RunID      string                   `json:"run_id" yaml:"run_id"`
	Files      []fileDoc                `json:"files" yaml:"files"`
	Total      int                      `json:"total" yaml:"total"`
	Parsed     int                      `json:"parsed" yaml:"parsed"`
	Failed     int                      `json:"failed" yaml:"failed"`
	ByCode     map[diagnostics.Code]int `json:"by_code,omitempty" yaml:"by_code,omitempty"`
	DurationMS int64                    `json:"duration_ms" yaml:"duration_ms"`
}

func (s *Summary) toDoc() summaryDoc {
	files := make([]fileDoc, 0, len(s.Files))
	for _, r := range s.Files {
		doc := fileDoc{
			Input:       r.Input,
			Success:     r.Success(),
			Shape:       r.Shape,
			Elements:    r.Elements,
			Value:       r.Value,
			Diagnostics: r.Diagnostics,
			DurationMS:  r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			doc.Error = r.Err.Error()
		}
		files = append(files, doc)
	}

	var byCode map[diagnostics.Code]int
	if len(s.ByCode) > 0 {
		byCode = s.ByCode
	}

	return summaryDoc{
		RunID:      s.RunID,
		Files:      files,
		Total:      s.Total(),
		Parsed:     s.Parsed,
		Failed:     s.Failed,
		ByCode:     byCode,
		DurationMS: s.Duration.Milliseconds(),
	}
}

// Write prints the summary in the requested format.
func (s *Summary) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s.toDoc())
	case FormatYAML:
		out, err := yaml.Marshal(s.toDoc())
		if err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}
		_, err = w.Write(out)
		return err
	case FormatText, "":
		return s.writeText(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (s *Summary) writeText(w io.Writer) error {
	writef := func(format string, args ...any) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	}

	for _, r := range s.Files {
		if r.Success() {
			if err := writef("%s: ok shape [%s] (%d element(s))\n", r.Input, joinInts(r.Shape), r.Elements); err != nil {
				return err
			}
			value, err := json.Marshal(r.Value)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Input, err)
			}
			if err := writef("  %s\n", value); err != nil {
				return err
			}
			continue
		}

		if err := writef("%s: failed\n", r.Input); err != nil {
			return err
		}
		for _, issue := range r.Diagnostics {
			if err := writef("  %s\n", issue.Error()); err != nil {
				return err
			}
		}
		if r.Err != nil {
			if err := writef("  %v\n", r.Err); err != nil {
				return err
			}
		}
	}

	if err := writef("--------------------------------------------------------------------------------\n"); err != nil {
		return err
	}
	if s.RunID != "" {
		if err := writef("Run:     %s\n", s.RunID); err != nil {
			return err
		}
	}
	if err := writef("Inputs:  %d\nParsed:  %d\nFailed:  %d\n", s.Total(), s.Parsed, s.Failed); err != nil {
		return err
	}

	if len(s.ByCode) > 0 {
		if err := writef("\nDiagnostics by code:\n"); err != nil {
			return err
		}
		codes := make([]diagnostics.Code, 0, len(s.ByCode))
		for code := range s.ByCode {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		for _, code := range codes {
			if err := writef("  - %s: %d\n", code, s.ByCode[code]); err != nil {
				return err
			}
		}
	}

	return nil
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
