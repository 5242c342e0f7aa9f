package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("checkout: %w", NotFound("No such branch exists."))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrPreconditionFailed))

	msg, ok := Message(err)
	assert.True(t, ok)
	assert.Equal(t, "No such branch exists.", msg)
}

func TestMessage_PlainError(t *testing.T) {
	_, ok := Message(errors.New("disk on fire"))
	assert.False(t, ok)
}

func TestUntrackedOverwrite(t *testing.T) {
	err := UntrackedOverwrite()
	assert.ErrorIs(t, err, ErrUntrackedOverwrite)
	assert.Contains(t, err.Error(), "untracked file in the way")
}
