package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error taxonomy for extraction. Only ErrInputTooLarge and unreadable input
// end an extraction early; the rest are absorbed and logged.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInputTooLarge     = errors.New("input too large")
	ErrUnreadableInput   = errors.New("cannot open document")
	ErrClassification    = errors.New("classification failed")
	ErrExtractionEmpty   = errors.New("no extractable financial data")
	ErrCacheUnavailable  = errors.New("cache unavailable")
	ErrPageProcessing    = errors.New("page processing failed")
	ErrEngineUnavailable = errors.New("ocr engine unavailable")
)

// Error codes carried by AppError.Code.
const (
	CodeInputTooLarge     = "INPUT_TOO_LARGE"
	CodeUnreadableInput   = "UNREADABLE_INPUT"
	CodeExtractionEmpty   = "EXTRACTION_EMPTY"
	CodeCancelled         = "CANCELLED"
	CodeInternal          = "INTERNAL"
	CodePageProcessing    = "PAGE_PROCESSING"
	CodeCacheUnavailable  = "CACHE_UNAVAILABLE"
	CodeConfig            = "CONFIG_ERROR"
	CodeEngineUnavailable = "ENGINE_UNAVAILABLE"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// PageError records the page a failure belongs to.
func PageError(page int, err error) error {
	return NewAppError(CodePageProcessing, fmt.Sprintf("page %d", page), errors.Join(ErrPageProcessing, err))
}
