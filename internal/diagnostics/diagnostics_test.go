package diagnostics

import "testing"

func TestDefinitionForKnownCodes(t *testing.T) {
	t.Parallel()

	for code, definition := range definitions {
		got := DefinitionFor(code)
		if got != definition {
			t.Fatalf("DefinitionFor(%q) = %+v, want %+v", code, got, definition)
		}
		if got.Category == "" {
			t.Fatalf("DefinitionFor(%q).Category is empty", code)
		}
	}
}

func TestDefinitionForUnknownCode(t *testing.T) {
	t.Parallel()

	got := DefinitionFor("something_else")
	if got.Category != CategoryStructural || got.Recoverable {
		t.Fatalf("DefinitionFor(unknown) = %+v, want fatal structural", got)
	}
}

func TestRecoverability(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code Code
		want bool
	}{
		{CodeConfigInvalid, false},
		{CodeExpectedOpen, false},
		{CodeDepthExceeded, false},
		{CodeElementInvalid, false},
		{CodeShapeMismatch, true},
		{CodeDimensionMismatch, true},
		{CodePrematureEnd, true},
		{CodeMismatchedClose, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			t.Parallel()

			issue := New(tt.code, 0, "x")
			if got := issue.Recoverable(); got != tt.want {
				t.Fatalf("Recoverable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIssueError(t *testing.T) {
	t.Parallel()

	issue := New(CodeShapeMismatch, 7, "got %d elements, want %d", 1, 2)
	if issue.Category != CategoryShape {
		t.Fatalf("Category = %q, want %q", issue.Category, CategoryShape)
	}

	want := "shape_mismatch at offset 7: got 1 elements, want 2"
	if got := issue.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
