package parse

import "fmt"

// ParseError is a batch-fatal input error: the spreadsheet is empty or a
// required column is missing. It aborts the whole batch before any draft
// is processed; all other parse problems degrade to per-row warnings.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s", e.Reason)
}

// NewParseError creates a batch-fatal parse error.
func NewParseError(format string, args ...any) *ParseError {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}
