package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewErrorKnownCode(t *testing.T) {
	err := NewError(ErrChatNotFound)

	assert.Equal(t, ErrChatNotFound, err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "Chat not found.", err.Message)
}

func TestNewErrorFormatsDetails(t *testing.T) {
	err := NewError(ErrGroupHandleTaken, "gophers")
	assert.Equal(t, "Group handle @gophers is already taken.", err.Message)

	err = NewError(ErrTooManyMembers, 100)
	assert.Equal(t, "At most 100 members can be added at once.", err.Message)
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(999999)

	assert.Equal(t, ErrUnknown, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCustomErrorUnwrapsWithAs(t *testing.T) {
	wrapped := fmt.Errorf("saving message: %w", NewError(ErrNotChatMember))

	var customErr *CustomError
	require.True(t, errors.As(wrapped, &customErr))
	assert.Equal(t, ErrNotChatMember, customErr.Code)
}

func TestErrorMapStatusesAreValid(t *testing.T) {
	for code, entry := range errorMap {
		assert.Equal(t, code, entry.Code, "map key must match entry code")
		assert.GreaterOrEqual(t, entry.Status, 400, "code %d", code)
		assert.NotEmpty(t, entry.Message, "code %d", code)
	}
}
