// Package runner parses a batch of inputs with one profile and collects the
// results into a report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jacoelho/ndparse/internal/config"
	"github.com/jacoelho/ndparse/internal/delim"
	"github.com/jacoelho/ndparse/internal/engine"
	"github.com/jacoelho/ndparse/internal/lexer"
	"github.com/jacoelho/ndparse/internal/nest"
	"github.com/jacoelho/ndparse/internal/profile"
	"github.com/jacoelho/ndparse/internal/query"
	"github.com/jacoelho/ndparse/internal/ratelimit"
	"github.com/jacoelho/ndparse/internal/report"
	"github.com/jacoelho/ndparse/internal/symbol"
)

var (
	ErrRead          = errors.New("failed to read input")
	ErrTrailingInput = errors.New("trailing input after outermost close")
)

// Runner parses inputs concurrently. Every input gets its own engine.Parser,
// so parses never share state.
type Runner struct {
	inputs      []string
	shape       []int
	profile     profile.Profile
	registry    *delim.Registry
	interpreter engine.Interpreter[any]
	selector    *query.Selector
	concurrency int
	limiter     *ratelimit.Limiter
	logger      *zap.Logger
	stdin       io.Reader
}

type Option func(*Runner)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStdin replaces os.Stdin as the source for the "-" input.
func WithStdin(stdin io.Reader) Option {
	return func(r *Runner) {
		r.stdin = stdin
	}
}

// New builds a Runner from a validated configuration and a profile.
func New(cfg *config.Config, prof profile.Profile, opts ...Option) (*Runner, error) {
	registry, err := prof.Registry()
	if err != nil {
		return nil, err
	}

	interpreter, err := prof.NewInterpreter()
	if err != nil {
		return nil, err
	}

	selector, err := query.Compile(cfg.Select)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		inputs:      cfg.Inputs,
		shape:       cfg.Shape,
		profile:     prof,
		registry:    registry,
		interpreter: interpreter,
		selector:    selector,
		concurrency: max(cfg.Concurrency, 1),
		limiter:     ratelimit.New(cfg.RateLimit),
		logger:      zap.NewNop(),
		stdin:       os.Stdin,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Run parses every input and returns the summary in input order. It only
// returns an error when ctx is cancelled; parse failures are in the summary.
func (r *Runner) Run(ctx context.Context) (*report.Summary, error) {
	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))
	log.Info("run started",
		zap.Int("inputs", len(r.inputs)),
		zap.Int("concurrency", r.concurrency),
		zap.Float64("rate_limit", r.limiter.Limit()),
		zap.Bool("infer_shape", r.shape == nil))

	start := time.Now()
	results := make([]report.FileResult, len(r.inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, input := range r.inputs {
		if err := r.limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			results[i] = r.ParseInput(gctx, input, log)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		log.Warn("run interrupted", zap.Error(err))
		return nil, fmt.Errorf("run interrupted: %w", err)
	}

	summary := report.NewSummary(runID)
	for _, result := range results {
		summary.Add(result)
	}
	summary.Duration = time.Since(start)

	log.Info("run finished",
		zap.Int("parsed", summary.Parsed),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

// ParseInput reads one input, a file path or "-" for stdin, and parses it.
func (r *Runner) ParseInput(ctx context.Context, input string, log *zap.Logger) report.FileResult {
	if err := ctx.Err(); err != nil {
		return report.FileResult{Input: input, Err: err}
	}

	start := time.Now()
	data, err := r.read(input)
	if err != nil {
		return report.FileResult{Input: input, Err: err, Duration: time.Since(start)}
	}

	result := r.ParseSource(input, data, log)
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) read(input string) ([]byte, error) {
	if input == config.Stdin {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: stdin: %v", ErrRead, err)
		}
		return data, nil
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return data, nil
}

// ParseSource lexes, parses, nests and selects one in-memory input.
func (r *Runner) ParseSource(name string, data []byte, log *zap.Logger) report.FileResult {
	if log == nil {
		log = r.logger
	}
	log = log.With(zap.String("input", name))
	res := report.FileResult{Input: name}

	symbols, err := lexer.Lex(string(data))
	if err != nil {
		res.Err = err
		return res
	}

	stream := symbol.NewSliceStream(symbols)
	parser := engine.New(r.registry, r.interpreter, append(r.profile.Options(), engine.WithLogger(log))...)

	var parsed engine.Result[any]
	if r.shape != nil {
		parsed = parser.ParseWithShape(stream, r.shape)
	} else {
		parsed = parser.ParseInferringShape(stream)
	}
	if !parsed.Success {
		res.Diagnostics = parsed.Diagnostics
		log.Debug("parse failed", zap.Int("diagnostics", len(parsed.Diagnostics)))
		return res
	}

	for _, sym := range stream.Remaining() {
		if !r.registry.IsBlank(sym.Type) {
			res.Err = fmt.Errorf("%w: %s", ErrTrailingInput, sym)
			return res
		}
	}

	nested, err := nest.Nest(parsed.Shape, parsed.Elements)
	if err != nil {
		res.Err = err
		return res
	}

	value, err := r.selector.Apply(nested)
	if err != nil {
		res.Err = err
		return res
	}

	res.Shape = parsed.Shape
	res.Elements = len(parsed.Elements)
	res.Value = value
	log.Debug("parsed", zap.Ints("shape", parsed.Shape), zap.Int("elements", len(parsed.Elements)))
	return res
}
