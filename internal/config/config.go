package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jacoelho/ndparse/internal/query"
	"github.com/jacoelho/ndparse/internal/report"
)

const (
	// Stdin names standard input among the inputs.
	Stdin = "-"

	DefaultConcurrency = 4
)

var (
	ErrNoInputs           = errors.New("no inputs specified")
	ErrInvalidShape       = errors.New("shape must be comma separated non-negative sizes, e.g. 2,3")
	ErrInvalidFormat      = errors.New("format must be one of text, json, yaml")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
	ErrInvalidRateLimit   = errors.New("rate limit must not be negative")
	ErrDuplicateStdin     = errors.New("standard input can only be read once")
)

// Format selects how results are rendered.
type Format = report.Format

const (
	FormatText = report.FormatText
	FormatJSON = report.FormatJSON
	FormatYAML = report.FormatYAML
)

// Config represents the complete configuration for one ndparse run.
type Config struct {
	Inputs []string
	// Shape is the declared shape; nil means infer it from the input.
	Shape       []int
	ProfileFile string
	Format      Format
	Select      string
	Concurrency int
	RateLimit   float64 // Inputs per second (0 = unlimited)
	Debug       bool
}

func Default() *Config {
	return &Config{
		Format:      FormatText,
		Concurrency: DefaultConcurrency,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInputs
	}

	stdin := 0
	for _, input := range c.Inputs {
		if input == Stdin {
			stdin++
			continue
		}
		if _, err := os.Stat(input); err != nil {
			return fmt.Errorf("input %s not found: %w", input, err)
		}
	}
	if stdin > 1 {
		return ErrDuplicateStdin
	}

	if c.ProfileFile != "" {
		if _, err := os.Stat(c.ProfileFile); err != nil {
			return fmt.Errorf("profile %s not found: %w", c.ProfileFile, err)
		}
	}

	switch c.Format {
	case FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w, got: %q", ErrInvalidFormat, c.Format)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("%w, got: %d", ErrInvalidConcurrency, c.Concurrency)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w, got: %v", ErrInvalidRateLimit, c.RateLimit)
	}

	if _, err := query.Compile(c.Select); err != nil {
		return err
	}

	return nil
}

// ParseShape parses "2,3" into [2 3]. Sizes may also be separated by "x", as
// in "2x3". An empty string yields nil, meaning the shape is inferred.
func ParseShape(value string) ([]int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == 'x' })
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w, got: %s", ErrInvalidShape, value)
	}

	shape := make([]int, 0, len(parts))
	for _, part := range parts {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w, got: %s", ErrInvalidShape, value)
		}
		shape = append(shape, size)
	}

	return shape, nil
}

// FormatShape is the inverse of ParseShape.
func FormatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, size := range shape {
		parts[i] = strconv.Itoa(size)
	}
	return strings.Join(parts, ",")
}

// ShapeValue implements pflag.Value for --shape.
type ShapeValue struct {
	Shape *[]int
}

func (s ShapeValue) String() string {
	if s.Shape == nil {
		return ""
	}
	return FormatShape(*s.Shape)
}

func (s ShapeValue) Set(value string) error {
	shape, err := ParseShape(value)
	if err != nil {
		return err
	}
	*s.Shape = shape
	return nil
}

func (s ShapeValue) Type() string {
	return "shape"
}

// FormatValue implements pflag.Value for --format.
type FormatValue struct {
	Format *Format
}

func (f FormatValue) String() string {
	if f.Format == nil {
		return ""
	}
	return string(*f.Format)
}

func (f FormatValue) Set(value string) error {
	switch format := Format(strings.ToLower(value)); format {
	case FormatText, FormatJSON, FormatYAML:
		*f.Format = format
		return nil
	default:
		return fmt.Errorf("%w, got: %q", ErrInvalidFormat, value)
	}
}

func (f FormatValue) Type() string {
	return "format"
}
