package diagnostics

import "fmt"

// Code classifies a parse failure.
type Code string

const (
	CodeConfigInvalid       Code = "config_invalid"
	CodeParserBusy          Code = "parser_busy"
	CodeExpectedOpen        Code = "expected_open"
	CodeUnexpectedSymbol    Code = "unexpected_symbol"
	CodeUnexpectedSeparator Code = "unexpected_separator"
	CodeUnexpectedClose     Code = "unexpected_close"
	CodeMismatchedClose     Code = "mismatched_close"
	CodePrematureEnd        Code = "premature_end"
	CodeDepthExceeded       Code = "depth_exceeded"
	CodeBacktrackLimit      Code = "backtrack_limit"
	CodeDimensionMismatch   Code = "dimension_mismatch"
	CodeShapeMismatch       Code = "shape_mismatch"
	CodeEmptyElement        Code = "empty_element"
	CodeElementInvalid      Code = "element_invalid"
)

// Category groups codes by the phase that raised them.
type Category string

const (
	CategoryConfiguration Category = "configuration"
	CategoryStructural    Category = "structural"
	CategoryShape         Category = "shape"
	CategoryElement       Category = "element"
)

// Definition is canonical metadata for one diagnostic code.
type Definition struct {
	Code     Code
	Category Category
	// Recoverable codes may be retried from a checkpoint under the atomic
	// interpretation of an ambiguous open delimiter.
	Recoverable bool
}

var definitions = map[Code]Definition{
	CodeConfigInvalid:       {Code: CodeConfigInvalid, Category: CategoryConfiguration},
	CodeParserBusy:          {Code: CodeParserBusy, Category: CategoryConfiguration},
	CodeExpectedOpen:        {Code: CodeExpectedOpen, Category: CategoryStructural},
	CodeUnexpectedSymbol:    {Code: CodeUnexpectedSymbol, Category: CategoryStructural, Recoverable: true},
	CodeUnexpectedSeparator: {Code: CodeUnexpectedSeparator, Category: CategoryStructural, Recoverable: true},
	CodeUnexpectedClose:     {Code: CodeUnexpectedClose, Category: CategoryStructural, Recoverable: true},
	CodeMismatchedClose:     {Code: CodeMismatchedClose, Category: CategoryStructural, Recoverable: true},
	CodePrematureEnd:        {Code: CodePrematureEnd, Category: CategoryStructural, Recoverable: true},
	CodeDepthExceeded:       {Code: CodeDepthExceeded, Category: CategoryStructural},
	CodeBacktrackLimit:      {Code: CodeBacktrackLimit, Category: CategoryStructural},
	CodeDimensionMismatch:   {Code: CodeDimensionMismatch, Category: CategoryShape, Recoverable: true},
	CodeShapeMismatch:       {Code: CodeShapeMismatch, Category: CategoryShape, Recoverable: true},
	CodeEmptyElement:        {Code: CodeEmptyElement, Category: CategoryStructural, Recoverable: true},
	CodeElementInvalid:      {Code: CodeElementInvalid, Category: CategoryElement},
}

// DefinitionFor resolves canonical metadata for a diagnostic code. Unknown
// codes are treated as fatal structural errors.
func DefinitionFor(code Code) Definition {
	if definition, ok := definitions[code]; ok {
		return definition
	}

	return Definition{
		Code:     code,
		Category: CategoryStructural,
	}
}

// Issue is a single parse diagnostic.
type Issue struct {
	Code     Code     `json:"code" yaml:"code"`
	Category Category `json:"category" yaml:"category"`
	Message  string   `json:"message" yaml:"message"`
	Offset   int      `json:"offset" yaml:"offset"`
}

// New builds an Issue with the canonical category for code.
func New(code Code, offset int, format string, args ...any) Issue {
	return Issue{
		Code:     code,
		Category: DefinitionFor(code).Category,
		Message:  fmt.Sprintf(format, args...),
		Offset:   offset,
	}
}

// Recoverable reports whether the issue may be retried from a checkpoint.
func (i Issue) Recoverable() bool {
	return DefinitionFor(i.Code).Recoverable
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at offset %d: %s", i.Code, i.Offset, i.Message)
}
