package model

import "fmt"

// Error is a coded error. Codes are compared by errors.Is.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates an Error with an underlying cause.
func NewError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

const (
	CodeSchemaUnavailable      = "SCHEMA_UNAVAILABLE"
	CodeChunkExtractionFailure = "CHUNK_EXTRACTION_FAILURE"
	CodeMalformedResponse      = "MALFORMED_RESPONSE"
	CodeExternalServiceFailure = "EXTERNAL_SERVICE_FAILURE"
	CodeAllChunksFailed        = "ALL_CHUNKS_FAILED"
	CodeInvalidSchema          = "INVALID_SCHEMA"
	CodeEmptyGraph             = "EMPTY_GRAPH"
	CodeNotFound               = "NOT_FOUND"
)

var (
	ErrSchemaUnavailable = &Error{Code: CodeSchemaUnavailable, Message: "schema not loaded"}
	ErrChunkExtraction   = &Error{Code: CodeChunkExtractionFailure, Message: "chunk extraction failed"}
	ErrMalformedResponse = &Error{Code: CodeMalformedResponse, Message: "malformed model response"}
	ErrExternalService   = &Error{Code: CodeExternalServiceFailure, Message: "external service call failed"}
	ErrAllChunksFailed   = &Error{Code: CodeAllChunksFailed, Message: "all text chunks failed extraction"}
	ErrInvalidSchema     = &Error{Code: CodeInvalidSchema, Message: "invalid schema"}
	ErrEmptyGraph        = &Error{Code: CodeEmptyGraph, Message: "graph has no nodes"}
	ErrCommunityNotFound = &Error{Code: CodeNotFound, Message: "community not found"}
)
