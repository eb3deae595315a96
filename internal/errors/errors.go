package errors

import (
	goerrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// RoutesFileMissing indicates the routes file could not be read
	RoutesFileMissing ErrorCode = "ROUTES_FILE_MISSING"
	// ParseFailed indicates the routes file is not a valid module
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ParserUnavailable indicates the binary was built without cgo
	ParserUnavailable ErrorCode = "PARSER_UNAVAILABLE"
	// WriteFailed indicates the rewritten file could not be stored
	WriteFailed ErrorCode = "WRITE_FAILED"
	// InvalidInput indicates bad route nodes or arguments
	InvalidInput ErrorCode = "INVALID_INPUT"
	// ConfigInvalid indicates the routesync configuration is unusable
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditFile suggests editing a file by hand
	EditFile FixActionType = "edit-file"
	// Rebuild suggests rebuilding the binary
	Rebuild FixActionType = "rebuild"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	File        string        `json:"file,omitempty"`
}

// RouteError is an error with a stable code and suggested fixes.
type RouteError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a RouteError carrying the default fixes for code.
func New(code ErrorCode, message string, cause error) *RouteError {
	return &RouteError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *RouteError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *RouteError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *RouteError) WithDetails(details interface{}) *RouteError {
	e.Details = details
	return e
}

// WithFix appends a suggested fix.
func (e *RouteError) WithFix(fix FixAction) *RouteError {
	e.SuggestedFixes = append(e.SuggestedFixes[:len(e.SuggestedFixes):len(e.SuggestedFixes)], fix)
	return e
}

// As returns the first RouteError in err's chain.
func As(err error) (*RouteError, bool) {
	var re *RouteError
	if goerrors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// CodeOf returns the code of the first RouteError in err's chain,
// InternalError for any other non-nil error, and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if re, ok := As(err); ok {
		return re.Code
	}
	return InternalError
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	RoutesFileMissing: {
		{
			Type:        RunCommand,
			Command:     "routesync init",
			Safe:        true,
			Description: "Create a skeleton routes file and configuration",
		},
		{
			Type:        EditFile,
			File:        ".routesync/config.json",
			Description: "Point routes.file at the existing routes module",
		},
	},
	ParseFailed: {
		{
			Type:        EditFile,
			Description: "Fix the syntax error in the routes file",
		},
	},
	ParserUnavailable: {
		{
			Type:        Rebuild,
			Command:     "CGO_ENABLED=1 go build ./cmd/routesync",
			Description: "Rebuild with cgo enabled to include the tree-sitter parser",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "routesync config show",
			Safe:        true,
			Description: "Inspect the effective configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
