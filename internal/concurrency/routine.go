package concurrency

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError carries a recovered panic value.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Guard runs fn on the calling goroutine and turns a panic into a *PanicError.
func Guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			slog.Error("Panic recovered", "panic", r, "stack", string(stack))
			err = &PanicError{Value: r, Stack: stack}
		}
	}()
	return fn()
}

// SafeGo runs a function in a goroutine with panic recovery.
func SafeGo(fn func(), onPanic func(interface{})) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				slog.Error("Panic recovered", "panic", r, "stack", string(stack))
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn()
	}()
}
