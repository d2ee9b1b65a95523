package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("booking %s not found", "x"), KindNotFound},
		{"wrapped forbidden", fmt.Errorf("outer: %w", Forbidden("nope")), KindForbidden},
		{"capacity", CapacityExceeded("max 4"), KindCapacityExceeded},
		{"plain error", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageHidesInternalErrors(t *testing.T) {
	assert.Equal(t, "Internal server error", Message(errors.New("pq: connection refused")))
	assert.Equal(t, "Internal server error", Message(Internal("create booking", errors.New("boom"))))
	assert.Equal(t, "Property not found", Message(NotFound("Property not found")))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(KindConflict, "duplicate", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "duplicate: cause", err.Error())
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(nil, KindConflict))
}
