package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCodes(t *testing.T) {
	require.Equal(t, 1, KindConfig.ExitCode())
	require.Equal(t, 1, KindInput.ExitCode())
	require.Equal(t, 2, KindIO.ExitCode())
}

func TestErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := IO("write checkpoint", cause)

	require.ErrorIs(t, err, cause)

	var target *Error
	require.True(t, errors.As(err, &target))
	require.Equal(t, KindIO, target.Kind)
}

func TestErrorMessageIncludesOpAndKind(t *testing.T) {
	err := Input("parse catalog", errors.New("empty"))
	require.Contains(t, err.Error(), "input")
	require.Contains(t, err.Error(), "parse catalog")
}
