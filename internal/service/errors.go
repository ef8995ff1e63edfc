package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MimeLyc/artwork-curator/pkg/log"
)

type ErrorType int

const (
	ErrItemNotFound ErrorType = iota
	ErrFileRead
	ErrFileWrite
	ErrParse
	ErrAPI
	ErrValidation
	ErrConfig
	ErrNetwork
	ErrSelection
	ErrUnknown
)

type CuratorError struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *CuratorError {
	return &CuratorError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewErrorWithCause(errorType ErrorType, message string, cause error) *CuratorError {
	return &CuratorError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

func (e *CuratorError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type.String(), e.Message))

	if len(e.Context) > 0 {
		var ctxParts []string
		for k, v := range e.Context {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, v))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *CuratorError) Unwrap() error {
	return e.Cause
}

func (e *CuratorError) WithContext(key string, value any) *CuratorError {
	e.Context[key] = value
	return e
}

func (t ErrorType) String() string {
	switch t {
	case ErrItemNotFound:
		return "ItemNotFound"
	case ErrFileRead:
		return "FileRead"
	case ErrFileWrite:
		return "FileWrite"
	case ErrParse:
		return "Parse"
	case ErrAPI:
		return "API"
	case ErrValidation:
		return "Validation"
	case ErrConfig:
		return "Config"
	case ErrNetwork:
		return "Network"
	case ErrSelection:
		return "Selection"
	case ErrUnknown:
		return "Unknown"
	default:
		return "Unknown"
	}
}

type ErrorHandler interface {
	Handle(err error) bool
	GetAdvice(err *CuratorError) string
}

type DefaultErrorHandler struct{}

func NewDefaultErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{}
}

func (h *DefaultErrorHandler) Handle(err error) bool {
	curErr, ok := err.(*CuratorError)
	if !ok {
		log.Error("Unknown Error: %v", err)
		return false
	}

	advice := h.GetAdvice(curErr)
	log.Error("Error Detail: %v\n advice: %s", err, advice)

	return true
}

// GetAdvice returns error handling advice
func (h *DefaultErrorHandler) GetAdvice(err *CuratorError) string {
	switch err.Type {
	case ErrItemNotFound:
		return "Please check that the library path is correct and the item directory still exists"
	case ErrFileRead:
		return "Please check file permissions to ensure read access and verify the file is not corrupted"
	case ErrFileWrite:
		return "Please ensure the library directory has write permissions for artwork files"
	case ErrParse:
		return "Please verify the NFO file is valid XML"
	case ErrAPI:
		return "Please check if the provider API key is correct or review the provider service status"
	case ErrNetwork:
		return "Please check network connectivity to ensure access to the artwork providers"
	case ErrValidation:
		return "Please verify input parameters are correct"
	case ErrConfig:
		return "Please check that configuration files or environment variables are set correctly"
	case ErrSelection:
		return "No provider returned usable candidates for this item; verify the item has tmdb or tvdb ids in its NFO"
	default:
		return "Please review detailed error information and check relevant configuration and files"
	}
}

func IsErrorType(err error, errorType ErrorType) bool {
	var curErr *CuratorError
	if errors.As(err, &curErr) {
		return curErr.Type == errorType
	}
	return false
}

func WrapError(err error, errorType ErrorType, message string) *CuratorError {
	return NewErrorWithCause(errorType, message, err)
}

func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrUnknown, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
