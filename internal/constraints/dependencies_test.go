package constraints

import (
	"bytes"
	"encoding/json"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type goListPackage struct {
	ImportPath string
	Imports    []string
}

const modulePrefix = "github.com/jacoelho/ndparse/internal/"

// corePackages make up the nesting engine and must stay usable as a library.
var corePackages = map[string]struct{}{
	modulePrefix + "symbol":      {},
	modulePrefix + "delim":       {},
	modulePrefix + "diagnostics": {},
	modulePrefix + "stack":       {},
	modulePrefix + "engine":      {},
	modulePrefix + "nest":        {},
}

func TestCorePackagesDoNotImportOuterLayers(t *testing.T) {
	t.Parallel()

	outer := []string{
		modulePrefix + "config",
		modulePrefix + "profile",
		modulePrefix + "runner",
		modulePrefix + "report",
		modulePrefix + "query",
		modulePrefix + "exit",
		"github.com/spf13/cobra",
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		if _, ok := corePackages[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			for _, banned := range outer {
				if imp == banned || strings.HasPrefix(imp, banned+"/") {
					violations = append(violations, pkg.ImportPath+" imports "+imp)
				}
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden core->outer imports:\n%s", strings.Join(violations, "\n"))
	}
}

func TestEngineIsIndependentOfConcreteSymbols(t *testing.T) {
	t.Parallel()

	forbidden := map[string]struct{}{
		modulePrefix + "lexer":  {},
		modulePrefix + "interp": {},
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/engine/...", "./internal/delim/...", "./internal/symbol/...") {
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("engine packages must only see symbol types through the registry:\n%s", strings.Join(violations, "\n"))
	}
}

func TestPurePackagesAvoidSideEffectImports(t *testing.T) {
	t.Parallel()

	pure := map[string]struct{}{
		modulePrefix + "lexer":  {},
		modulePrefix + "interp": {},
		modulePrefix + "query":  {},
	}
	for pkg := range corePackages {
		pure[pkg] = struct{}{}
	}

	forbidden := map[string]struct{}{
		"os":           {},
		"net/http":     {},
		"math/rand":    {},
		"math/rand/v2": {},
	}

	var violations []string
	for _, pkg := range goList(t, "./internal/...") {
		if _, ok := pure[pkg.ImportPath]; !ok {
			continue
		}
		for _, imp := range pkg.Imports {
			if _, banned := forbidden[imp]; banned {
				violations = append(violations, pkg.ImportPath+" imports forbidden package "+imp)
			}
		}
	}

	if len(violations) > 0 {
		t.Fatalf("found forbidden imports in pure packages:\n%s", strings.Join(violations, "\n"))
	}
}

func goList(t *testing.T, patterns ...string) []goListPackage {
	t.Helper()

	args := append([]string{"list", "-json"}, patterns...)
	cmd := exec.Command("go", args...)
	cmd.Dir = repoRoot(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		t.Fatalf("go list failed: %v\nstderr:\n%s", err, stderr.String())
	}

	decoder := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	var packages []goListPackage
	for decoder.More() {
		var pkg goListPackage
		if err := decoder.Decode(&pkg); err != nil {
			t.Fatalf("decode go list json: %v", err)
		}
		packages = append(packages, pkg)
	}

	return packages
}

func repoRoot(t *testing.T) string {
	t.Helper()

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}

	return filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
}
