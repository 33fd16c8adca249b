package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wkalt/typewatch/service"
)

func TestExitCodeNormalTermination(t *testing.T) {
	require.Equal(t, 0, exitCode(nil))
}

func TestExitCodeArgumentError(t *testing.T) {
	require.Equal(t, 1, exitCode(errors.New("unknown flag: --bogus")))
}

func TestExitCodeConfigErrorIsAnArgumentError(t *testing.T) {
	require.Equal(t, 1, exitCode(&service.InvalidConfigError{Reason: "append and overwrite are mutually exclusive"}))
}

func TestExitCodeRuntimeErrorIsUnhandled(t *testing.T) {
	require.Equal(t, 255, exitCode(wrapRuntimeErr(&service.IoFailureError{Op: "open output", Err: errors.New("exists")})))
}

func TestExitCodeWrapRuntimeErrNilIsNoOp(t *testing.T) {
	require.Nil(t, wrapRuntimeErr(nil))
}
