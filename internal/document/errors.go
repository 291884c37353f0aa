package document

import "fmt"

// MalformedDocumentError indicates the raw input matched no known shape or
// produced a tree that failed validation.
type MalformedDocumentError struct {
	Reason string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %s", e.Reason)
}

// InvalidTreeError names the first structural invariant violation found.
type InvalidTreeError struct {
	Reason string
}

func (e *InvalidTreeError) Error() string {
	return fmt.Sprintf("invalid tree: %s", e.Reason)
}
