// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogInvalid    ErrorCode = "CATALOG_INVALID"

	ErrCodeSessionNotFound  ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionLimit     ErrorCode = "SESSION_LIMIT_REACHED"
	ErrCodeInvalidTurnInput ErrorCode = "INVALID_TURN_INPUT"
	ErrCodeFocusNotResolved ErrorCode = "FOCUS_NOT_RESOLVED"

	ErrCodeRenderFailed  ErrorCode = "RENDER_FAILED"
	ErrCodeRenderTimeout ErrorCode = "RENDER_TIMEOUT"
	ErrCodeSpeechFailed  ErrorCode = "SPEECH_FAILED"

	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed          ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewCatalogLoadFailedError is raised when the rule source cannot be read.
func NewCatalogLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeCatalogLoadFailed, "Eligibility catalog could not be loaded",
		fmt.Sprintf("source: %s, error: %v", source, err), false, err)
}

// NewCatalogInvalidError is raised when the rule source is readable but malformed.
func NewCatalogInvalidError(source, details string) *StandardError {
	return newError(ErrCodeCatalogInvalid, "Eligibility catalog is malformed",
		fmt.Sprintf("source: %s, %s", source, details), false, nil)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Conversation session not found",
		fmt.Sprintf("sessionId: %s", sessionID), false, nil)
}

func NewSessionLimitError(limit int) *StandardError {
	return newError(ErrCodeSessionLimit, "Too many active conversation sessions",
		fmt.Sprintf("limit: %d", limit), true, nil)
}

func NewInvalidTurnInputError(details string) *StandardError {
	return newError(ErrCodeInvalidTurnInput, "Conversation turn input is invalid", details, false, nil)
}

func NewFocusNotResolvedError(sessionID string) *StandardError {
	return newError(ErrCodeFocusNotResolved, "No scheme selected for this conversation",
		fmt.Sprintf("sessionId: %s", sessionID), false, nil)
}

func NewRenderFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeRenderFailed, "Response rendering failed",
		fmt.Sprintf("provider: %s, error: %v", provider, err), true, err)
}

func NewRenderTimeoutError(provider string) *StandardError {
	return newError(ErrCodeRenderTimeout, "Response rendering timed out",
		fmt.Sprintf("provider: %s", provider), true, nil)
}

func NewSpeechFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeSpeechFailed, "Speech service call failed",
		fmt.Sprintf("operation: %s, error: %v", operation, err), true, err)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true, err)
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true, err)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found",
		fmt.Sprintf("indexName: %s", indexName), false, nil)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCatalogLoadFailed:             "CATALOG_LOAD_FAILED",
	ErrCodeCatalogInvalid:                "CATALOG_INVALID",
	ErrCodeSessionNotFound:               "SESSION_NOT_FOUND",
	ErrCodeSessionLimit:                  "SESSION_LIMIT_REACHED",
	ErrCodeInvalidTurnInput:              "INVALID_TURN_INPUT",
	ErrCodeFocusNotResolved:              "FOCUS_NOT_RESOLVED",
	ErrCodeRenderFailed:                  "RENDER_FAILED",
	ErrCodeRenderTimeout:                 "RENDER_TIMEOUT",
	ErrCodeSpeechFailed:                  "SPEECH_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSpeechFailed,
		ErrCodeRenderFailed,
		ErrCodeSessionLimit:
		return 2

	case ErrCodeRenderTimeout:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// AsStandard extracts a StandardError from an error chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "TURN") || strings.Contains(codeStr, "FOCUS"):
		return "DIALOGUE"
	case strings.Contains(codeStr, "RENDER") || strings.Contains(codeStr, "SPEECH"):
		return "AI"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
