package concurrency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_ReturnsFnError(t *testing.T) {
	want := errors.New("boom")
	err := Guard(func() error { return want })
	assert.ErrorIs(t, err, want)
}

func TestGuard_RecoversPanic(t *testing.T) {
	err := Guard(func() error { panic("bad handler") })
	require.Error(t, err)

	var panicErr *PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "bad handler", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Equal(t, "panic: bad handler", err.Error())
}

func TestSafeGo_CallsOnPanic(t *testing.T) {
	recovered := make(chan interface{}, 1)
	SafeGo(func() { panic(42) }, func(r interface{}) { recovered <- r })
	assert.Equal(t, 42, <-recovered)
}
