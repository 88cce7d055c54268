package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cassmarket/pkg/errors"
)

func TestDoKeepsDeltaOnSuccess(t *testing.T) {
	count := 0

	err := Do(
		func() { count++ },
		func() { count-- },
		func() error { return nil },
	)

	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDoRevertsDeltaExactlyOnceOnFailure(t *testing.T) {
	count := 5
	reverts := 0

	err := Do(
		func() { count++ },
		func() { count--; reverts++ },
		func() error { return errors.Internal("store unavailable", nil) },
	)

	assert.Error(t, err)
	assert.Equal(t, 5, count)
	assert.Equal(t, 1, reverts)
}
