package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeExecuteConvertsPanic(t *testing.T) {
	err := SafeExecute("boom", func() error {
		panic("tree renderer exploded")
	})
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, As(err, &panicErr))
	assert.Equal(t, "boom", panicErr.Operation)
	assert.Contains(t, err.Error(), "tree renderer exploded")
	assert.NotEmpty(t, panicErr.StackTrace)
}

func TestSafeExecutePassesThrough(t *testing.T) {
	assert.NoError(t, SafeExecute("ok", func() error { return nil }))

	want := New("plain failure")
	assert.Equal(t, want, SafeExecute("fail", func() error { return want }))
}

func TestRecoverKeepsExistingError(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "op")
		return nil
	}
	assert.NoError(t, fn())
}
