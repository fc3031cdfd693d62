package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jacoelho/ndparse/internal/config"
	"github.com/jacoelho/ndparse/internal/diagnostics"
	"github.com/jacoelho/ndparse/internal/lexer"
	"github.com/jacoelho/ndparse/internal/profile"
	"github.com/jacoelho/ndparse/internal/query"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newRunner(t *testing.T, cfg *config.Config, opts ...Option) *Runner {
	t.Helper()

	r, err := New(cfg, profile.Default(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Inputs = []string{
		writeInput(t, dir, "matrix.txt", "[[1, 2, 3],\n [4, 5, 6]]\n"),
		writeInput(t, dir, "ragged.txt", "[[1,2],[3]]"),
		writeInput(t, dir, "atomic.txt", "[(1+2)*3, 4]"),
		writeInput(t, dir, "trailing.txt", "[1,2] [3]"),
		writeInput(t, dir, "lex.txt", "[1, #]"),
	}

	summary, err := newRunner(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.RunID == "" {
		t.Fatal("RunID is empty")
	}
	if summary.Total() != 5 || summary.Parsed != 2 || summary.Failed != 3 {
		t.Fatalf("Total/Parsed/Failed = %d/%d/%d, want 5/2/3", summary.Total(), summary.Parsed, summary.Failed)
	}

	matrix := summary.Files[0]
	if diff := cmp.Diff([]int{2, 3}, matrix.Shape); diff != "" {
		t.Fatalf("matrix shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{[]any{1.0, 2.0, 3.0}, []any{4.0, 5.0, 6.0}}, matrix.Value); diff != "" {
		t.Fatalf("matrix value mismatch (-want +got):\n%s", diff)
	}

	ragged := summary.Files[1]
	if len(ragged.Diagnostics) != 1 || ragged.Diagnostics[0].Code != diagnostics.CodeShapeMismatch {
		t.Fatalf("ragged diagnostics = %v, want one shape_mismatch", ragged.Diagnostics)
	}

	atomic := summary.Files[2]
	if diff := cmp.Diff([]any{9.0, 4.0}, atomic.Value); diff != "" {
		t.Fatalf("atomic value mismatch (-want +got):\n%s", diff)
	}

	if err := summary.Files[3].Err; !errors.Is(err, ErrTrailingInput) {
		t.Fatalf("trailing input error = %v, want ErrTrailingInput", err)
	}
	if err := summary.Files[4].Err; !errors.Is(err, lexer.ErrLex) {
		t.Fatalf("lex error = %v, want ErrLex", err)
	}
}

func TestRunDeclaredShape(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Shape = []int{2, 2}
	cfg.Inputs = []string{
		writeInput(t, dir, "ok.txt", "[[1,2],[3,4]]"),
		writeInput(t, dir, "short.txt", "[[1,2],[3]]"),
		writeInput(t, dir, "flat.txt", "[1,2]"),
	}

	summary, err := newRunner(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []diagnostics.Code
	for _, f := range summary.Files {
		for _, issue := range f.Diagnostics {
			got = append(got, issue.Code)
		}
	}
	want := []diagnostics.Code{diagnostics.CodeShapeMismatch, diagnostics.CodeDimensionMismatch}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("diagnostic codes mismatch (-want +got):\n%s", diff)
	}
	if !summary.Files[0].Success() {
		t.Fatalf("ok.txt failed: %v", summary.Files[0].Diagnostics)
	}
}

func TestRunStdinAndSelect(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Inputs = []string{config.Stdin}
	cfg.Select = "$[*][1]"

	r := newRunner(t, cfg, WithStdin(strings.NewReader("[[1,2],[3,4],[5,6]]")))
	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := summary.Files[0]
	if got.Input != config.Stdin {
		t.Fatalf("Input = %q, want %q", got.Input, config.Stdin)
	}
	if diff := cmp.Diff([]any{2.0, 4.0, 6.0}, got.Value); diff != "" {
		t.Fatalf("selected value mismatch (-want +got):\n%s", diff)
	}
	if got.Elements != 6 {
		t.Fatalf("Elements = %d, want 6", got.Elements)
	}
}

func TestRunSelectionMiss(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Inputs = []string{config.Stdin}
	cfg.Select = "$[9]"

	summary, err := newRunner(t, cfg, WithStdin(strings.NewReader("[1,2]"))).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := summary.Files[0].Err; !errors.Is(err, query.ErrNotFound) {
		t.Fatalf("Err = %v, want ErrNotFound", err)
	}
}

func TestRunKeepsInputOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Concurrency = 8
	for i := range 40 {
		cfg.Inputs = append(cfg.Inputs, writeInput(t, dir, fmt.Sprintf("in%02d.txt", i), fmt.Sprintf("[%d, %d]", i, i*2)))
	}

	summary, err := newRunner(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for i, f := range summary.Files {
		if f.Input != cfg.Inputs[i] {
			t.Fatalf("Files[%d].Input = %q, want %q", i, f.Input, cfg.Inputs[i])
		}
		if diff := cmp.Diff([]any{float64(i), float64(i * 2)}, f.Value); diff != "" {
			t.Fatalf("Files[%d] value mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestRunMissingFile(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Inputs = []string{filepath.Join(t.TempDir(), "missing.txt")}

	summary, err := newRunner(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := summary.Files[0].Err; !errors.Is(err, ErrRead) {
		t.Fatalf("Err = %v, want ErrRead", err)
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Inputs = []string{config.Stdin}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t, cfg, WithStdin(strings.NewReader("[1]"))).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	cfg := config.Default()
	cfg.Inputs = []string{config.Stdin}

	r := newRunner(t, cfg, WithLogger(zap.New(core)), WithStdin(strings.NewReader("[(1, 2), (3, 4)]")))
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, msg := range []string{"run started", "checkpoint", "parsed", "run finished"} {
		if logs.FilterMessage(msg).Len() == 0 {
			t.Fatalf("no %q log entry, got %v", msg, logs.All())
		}
	}
	if got := logs.FilterField(zap.String("input", config.Stdin)).Len(); got == 0 {
		t.Fatal("no log entry tagged with the input name")
	}
}

func TestNewRejectsBadProfile(t *testing.T) {
	t.Parallel()

	prof := profile.Default()
	prof.Separator = lexer.RBracket

	if _, err := New(config.Default(), prof); !errors.Is(err, profile.ErrProfile) {
		t.Fatalf("New() error = %v, want ErrProfile", err)
	}
}
