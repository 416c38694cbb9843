package errors

import (
	"net/http"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeTimeout            ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeCacheError         ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeExternalService    ErrorCode = "COMMON_009"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_010"
)

// LLM module error codes
const (
	ErrCodeLLMUnreachable    ErrorCode = "LLM_001"
	ErrCodeLLMBadStatus      ErrorCode = "LLM_002"
	ErrCodeLLMEmptyResponse  ErrorCode = "LLM_003"
	ErrCodeLLMMalformedJSON  ErrorCode = "LLM_004"
	ErrCodeLLMRetriesExpired ErrorCode = "LLM_005"
)

// Pipeline / document error codes
const (
	ErrCodeDocumentParse  ErrorCode = "DOC_001"
	ErrCodeDocumentEmpty  ErrorCode = "DOC_002"
	ErrCodeOutputWrite    ErrorCode = "DOC_003"
	ErrCodeBatchNoFiles   ErrorCode = "DOC_004"
	ErrCodeWatcherFailure ErrorCode = "DOC_005"
)

// Catalog / store error codes
const (
	ErrCodeCatalogEncode ErrorCode = "CAT_001"
	ErrCodeStoreConn     ErrorCode = "CAT_002"
	ErrCodeStoreQuery    ErrorCode = "CAT_003"
	ErrCodeStoreMigrate  ErrorCode = "CAT_004"
)

// Aliases used by the fluent factories below.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// HTTPStatus maps an ErrorCode to the HTTP status the API layer should return.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeDocumentParse, ErrCodeDocumentEmpty:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeBatchNoFiles:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeServiceUnavailable, ErrCodeLLMUnreachable, ErrCodeLLMRetriesExpired:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
