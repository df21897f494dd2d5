package domain

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// ParseErrorKind classifies why a payload could not be turned into an entity.
type ParseErrorKind int

const (
	KindMalformedJSON ParseErrorKind = iota + 1
	KindMissingField
	KindTypeMismatch
)

var (
	ErrMalformedJSON = errors.New("malformed json")
	ErrMissingField  = errors.New("missing required field")
	ErrTypeMismatch  = errors.New("type mismatch")
)

// String returns the string representation.
func (k ParseErrorKind) String() string {
	switch k {
	case KindMalformedJSON:
		return "malformed_json"
	case KindMissingField:
		return "missing_field"
	case KindTypeMismatch:
		return "type_mismatch"
	default:
		return "unknown"
	}
}

func (k ParseErrorKind) sentinel() error {
	switch k {
	case KindMalformedJSON:
		return ErrMalformedJSON
	case KindMissingField:
		return ErrMissingField
	default:
		return ErrTypeMismatch
	}
}

// ParseError is a field-scoped failure to parse an exchange payload.
// Field is a dotted path into the payload, e.g. "balance.btc.amount" or "[2].date".
type ParseError struct {
	Kind  ParseErrorKind
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying decoding error, if any.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ParseError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func missingField(field string) error {
	return &ParseError{Kind: KindMissingField, Field: field}
}

func typeMismatch(field string, err error) error {
	return &ParseError{Kind: KindTypeMismatch, Field: field, Err: err}
}

// decodeError maps an encoding/json failure onto a parse error kind.
func decodeError(field string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Kind: KindMalformedJSON, Field: field, Err: err}
	}
	return typeMismatch(field, err)
}
