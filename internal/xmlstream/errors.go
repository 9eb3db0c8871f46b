// Package xmlstream reads rule and alarm export documents as lazy record
// sequences under bounded memory, and defines the parse-fault taxonomy for
// the rest of the engine.
package xmlstream

import (
	"errors"
	"fmt"
)

// ParseErrorCode categorizes parse faults.
type ParseErrorCode string

const (
	// ErrCodeSyntax indicates malformed markup. This is the only fatal
	// condition: the sequence aborts and no further records are emitted.
	ErrCodeSyntax ParseErrorCode = "SYNTAX_ERROR"

	// ErrCodeEmptyDocument indicates a well-formed document that contains
	// no rule/alarm elements.
	ErrCodeEmptyDocument ParseErrorCode = "EMPTY_DOCUMENT"

	// ErrCodeMissingContainer indicates a rule document without a <rules>
	// container under the root.
	ErrCodeMissingContainer ParseErrorCode = "MISSING_CONTAINER"
)

// ParseError is a structured parse fault. Data-quality findings never take
// this form; they are validator output. ParseError is reserved for documents
// the readers cannot traverse at all.
type ParseError struct {
	Code    ParseErrorCode
	Message string
	Err     error // underlying decoder error, if any
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying decoder error.
func (e *ParseError) Unwrap() error { return e.Err }

// IsSyntaxError reports whether err is a markup syntax fault.
// Uses errors.As to handle wrapped errors.
func IsSyntaxError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Code == ErrCodeSyntax
}

// IsEmptyDocument reports whether err is the empty-document parse outcome.
func IsEmptyDocument(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Code == ErrCodeEmptyDocument
}

// IsMissingContainer reports whether err is the missing-container outcome.
func IsMissingContainer(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Code == ErrCodeMissingContainer
}

func syntaxError(context string, err error) *ParseError {
	return &ParseError{Code: ErrCodeSyntax, Message: context, Err: err}
}
