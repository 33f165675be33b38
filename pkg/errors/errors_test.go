package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("Engine", "Predict")
	require.Error(t, err)

	var nfErr *NotFittedError
	require.True(t, As(err, &nfErr))
	assert.Equal(t, "Engine", nfErr.ModelName)
	assert.Equal(t, "Predict", nfErr.Method)
	assert.Contains(t, err.Error(), "not fitted")
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("Fit", 4, 3, 0)

	var dimErr *DimensionError
	require.True(t, As(err, &dimErr))
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 3, dimErr.Got)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("learning_rate", "must be positive", -0.5)

	var valErr *ValidationError
	require.True(t, As(err, &valErr))
	assert.Equal(t, "learning_rate", valErr.ParamName)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestModelErrorUnwrap(t *testing.T) {
	cause := New("underlying failure")
	err := NewModelError("Restore", "decode snapshot", cause)

	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "decode snapshot")
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrEmptyData, "loading training matrix")
	assert.True(t, Is(err, ErrEmptyData))
}

func TestWarningHandler(t *testing.T) {
	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(nil)

	warning := NewConvergenceWarning("gbdt", 100, "loss still decreasing")
	Warn(warning)
	require.NotNil(t, got)
	assert.Contains(t, got.Error(), "did not converge")
}
