package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageFormatting(t *testing.T) {
	base := New("request.test", "something failed", http.StatusBadRequest)
	require.Equal(t, "something failed", base.Error())

	wrapped := base.WithInternal(stderrors.New("boom"))
	require.Equal(t, "something failed: boom", wrapped.Error())
	require.EqualError(t, wrapped.Unwrap(), "boom")
}

func TestFromErrorPreservesAppErrors(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrTypeMissing)
	got := FromError(err)
	require.Equal(t, ErrTypeMissing.Code, got.Code)
	require.Equal(t, http.StatusBadRequest, got.StatusCode)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(stderrors.New("db gone"))
	require.Equal(t, ErrInternalServer.Code, got.Code)
	require.EqualError(t, got.Unwrap(), "db gone")
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestDomainErrorStatusCodes(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, ErrTypeMissing.StatusCode)
	require.Equal(t, http.StatusConflict, ErrInvalidTransition.StatusCode)
	require.Equal(t, http.StatusBadRequest, ErrFileRequired.StatusCode)
	require.Equal(t, http.StatusConflict, ErrRowBusy.StatusCode)
}
