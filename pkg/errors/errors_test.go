package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "without detail",
			err:  &AppError{Code: ErrCodeDocumentParse, Message: "input is not valid XML"},
			want: "[DOC_001] input is not valid XML",
		},
		{
			name: "with detail",
			err:  &AppError{Code: ErrCodeLLMBadStatus, Message: "chat completion failed", Detail: "status=500"},
			want: "[LLM_002] chat completion failed: status=500",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrap_PreservesChain(t *testing.T) {
	root := stderrors.New("connection refused")
	wrapped := Wrap(root, ErrCodeLLMUnreachable, "LLM endpoint not reachable")

	if !stderrors.Is(wrapped, root) {
		t.Fatal("wrapped error should match the root cause via errors.Is")
	}
	if !IsCode(wrapped, ErrCodeLLMUnreachable) {
		t.Fatal("IsCode should find the wrapping code")
	}
	outer := fmt.Errorf("processing file: %w", wrapped)
	if !IsCode(outer, ErrCodeLLMUnreachable) {
		t.Fatal("IsCode should traverse non-AppError wrappers")
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if got := Wrap(nil, ErrCodeInternal, "should vanish"); got != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", got)
	}
}

func TestWrap_UnknownCodePreservesOriginal(t *testing.T) {
	inner := New(ErrCodeDocumentParse, "bad xml")
	outer := Wrap(inner, CodeUnknown, "while processing")
	if outer.Code != ErrCodeDocumentParse {
		t.Fatalf("expected original code to be preserved, got %s", outer.Code)
	}
}

func TestGetCode(t *testing.T) {
	if GetCode(nil) != CodeOK {
		t.Error("nil error should map to CodeOK")
	}
	if GetCode(stderrors.New("plain")) != CodeUnknown {
		t.Error("plain error should map to CodeUnknown")
	}
	if GetCode(New(ErrCodeCacheError, "miss")) != ErrCodeCacheError {
		t.Error("AppError code should be extracted")
	}
}

func TestWithDetail_Clones(t *testing.T) {
	base := New(ErrCodeStoreQuery, "query failed")
	detailed := base.WithDetail("run_id=42")
	if base.Detail != "" {
		t.Error("WithDetail must not mutate the receiver")
	}
	if detailed.Detail != "run_id=42" {
		t.Errorf("unexpected detail %q", detailed.Detail)
	}
	var nilErr *AppError
	if nilErr.WithDetail("x") != nil {
		t.Error("WithDetail on nil should return nil")
	}
}

func TestCaptureStack_SkipsRuntime(t *testing.T) {
	err := New(ErrCodeInternal, "boom")
	if err.Stack == "" {
		t.Fatal("expected a captured stack")
	}
	if strings.Contains(err.Stack, "runtime/") {
		t.Error("stack should not contain runtime frames")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeDocumentParse, http.StatusBadRequest},
		{ErrCodeBatchNoFiles, http.StatusNotFound},
		{ErrCodeLLMUnreachable, http.StatusServiceUnavailable},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}
