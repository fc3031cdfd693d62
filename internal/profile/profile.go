// Package profile describes how a family of inputs is parsed: which symbol
// types delimit groups, which one separates elements, which are blank, and
// how elements are interpreted. Profiles are YAML documents.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	yaml "github.com/goccy/go-yaml"

	"github.com/jacoelho/ndparse/internal/delim"
	"github.com/jacoelho/ndparse/internal/engine"
	"github.com/jacoelho/ndparse/internal/interp"
	"github.com/jacoelho/ndparse/internal/lexer"
	"github.com/jacoelho/ndparse/internal/symbol"
)

var ErrProfile = errors.New("profile error")

// Pair is one delimiter registration. Close lists every type that may end a
// group started by Open.
type Pair struct {
	Open  symbol.Type   `yaml:"open"`
	Close []symbol.Type `yaml:"close"`
}

type Profile struct {
	Name         string        `yaml:"name,omitempty"`
	Structural   []Pair        `yaml:"structural"`
	Atomic       []Pair        `yaml:"atomic,omitempty"`
	Separator    symbol.Type   `yaml:"separator"`
	Blanks       []symbol.Type `yaml:"blanks,omitempty"`
	Interpreter  interp.Kind   `yaml:"interpreter"`
	MaxDepth     int           `yaml:"max_depth,omitempty"`
	MaxRollbacks int           `yaml:"max_rollbacks,omitempty"`
}

// Default reads bracketed arithmetic: [ ] and ( ) nest, ( ) and { } also group
// sub-expressions, commas separate, spaces and newlines are ignored.
func Default() Profile {
	return Profile{
		Name: "default",
		Structural: []Pair{
			{Open: lexer.LBracket, Close: []symbol.Type{lexer.RBracket}},
			{Open: lexer.LParen, Close: []symbol.Type{lexer.RParen}},
		},
		Atomic: []Pair{
			{Open: lexer.LParen, Close: []symbol.Type{lexer.RParen}},
			{Open: lexer.LBrace, Close: []symbol.Type{lexer.RBrace}},
		},
		Separator:    lexer.Comma,
		Blanks:       []symbol.Type{lexer.Space, lexer.Newline},
		Interpreter:  interp.KindArithmetic,
		MaxDepth:     engine.DefaultMaxDepth,
		MaxRollbacks: engine.DefaultMaxRollbacks,
	}
}

// Parse decodes and validates one profile document. A missing interpreter
// defaults to arithmetic.
func Parse(r io.Reader) (Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Profile{}, fmt.Errorf("%w: profile is empty", ErrProfile)
	}

	var p Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.DisallowUnknownField())
	if err := decoder.Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("%w: failed to decode YAML: %v", ErrProfile, err)
	}

	if p.Interpreter == "" {
		p.Interpreter = interp.KindArithmetic
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

func Load(path string) (Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrProfile, err)
	}
	defer f.Close()

	p, err := Parse(f)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Encode writes p as YAML.
func Encode(w io.Writer, p Profile) error {
	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: failed to encode YAML: %v", ErrProfile, err)
	}
	_, err = w.Write(out)
	return err
}

// Validate checks that every symbol type is one the lexer produces, that the
// interpreter exists and that the delimiters form a valid registry.
func (p Profile) Validate() error {
	known := lexer.Types()
	check := func(field string, t symbol.Type) error {
		if !slices.Contains(known, t) {
			return fmt.Errorf("%w: %s: unknown symbol type %q (known: %v)", ErrProfile, field, t, known)
		}
		return nil
	}

	for _, pair := range append(slices.Clone(p.Structural), p.Atomic...) {
		if err := check("open", pair.Open); err != nil {
			return err
		}
		if len(pair.Close) == 0 {
			return fmt.Errorf("%w: %q has no close types", ErrProfile, pair.Open)
		}
		for _, c := range pair.Close {
			if err := check("close", c); err != nil {
				return err
			}
		}
	}
	if err := check("separator", p.Separator); err != nil {
		return err
	}
	for _, b := range p.Blanks {
		if err := check("blanks", b); err != nil {
			return err
		}
	}

	if p.MaxDepth < 0 || p.MaxRollbacks < 0 {
		return fmt.Errorf("%w: limits must not be negative", ErrProfile)
	}
	if _, err := interp.Lookup(p.Interpreter); err != nil {
		return fmt.Errorf("%w: %w", ErrProfile, err)
	}

	_, err := p.Registry()
	return err
}

// Registry builds the delimiter registry described by p.
func (p Profile) Registry() (*delim.Registry, error) {
	b := delim.NewBuilder()

	for _, pair := range p.Structural {
		for _, c := range pair.Close {
			if err := b.RegisterStructural(pair.Open, c); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrProfile, err)
			}
		}
	}
	for _, pair := range p.Atomic {
		for _, c := range pair.Close {
			if err := b.RegisterAtomic(pair.Open, c); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrProfile, err)
			}
		}
	}
	if err := b.SetSeparator(p.Separator); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfile, err)
	}
	for _, t := range p.Blanks {
		if err := b.MarkBlank(t); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrProfile, err)
		}
	}

	r, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfile, err)
	}
	return r, nil
}

func (p Profile) NewInterpreter() (engine.Interpreter[any], error) {
	in, err := interp.Lookup(p.Interpreter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfile, err)
	}
	return in, nil
}

// Options returns the engine limits set by p. Zero values keep the engine
// defaults.
func (p Profile) Options() []engine.Option {
	var opts []engine.Option
	if p.MaxDepth > 0 {
		opts = append(opts, engine.WithMaxDepth(p.MaxDepth))
	}
	if p.MaxRollbacks > 0 {
		opts = append(opts, engine.WithMaxRollbacks(p.MaxRollbacks))
	}
	return opts
}
