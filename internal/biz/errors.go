package biz

import (
	"strings"
)

type myerror struct {
	s string
}

func (me myerror) Error() string {
	return me.s
}

// NewMyError constructs a value-type myerror. The value type keeps
// WithMessage chaining convenient: the static type exposes the method, so
// callers write ErrInvalidArgument.WithMessage(...) directly.
func NewMyError(s string) myerror {
	return myerror{
		s: s,
	}
}

// WithMessage appends the provided message to the error string and returns a new myerror.
func (me myerror) WithMessage(str string) myerror {
	var builder strings.Builder

	builder.WriteString(me.s)
	builder.WriteString(": ")
	builder.WriteString(str)
	return myerror{
		s: builder.String(),
	}
}

// Is lets errors.Is match a decorated error against its sentinel: two
// myerrors match when one's message is a prefix of the other's.
func (me myerror) Is(target error) bool {
	other, ok := target.(myerror)
	if !ok {
		return false
	}
	return strings.HasPrefix(me.s, other.s)
}

var (
	ErrInvalidArgument myerror = NewMyError("invalid argument")
	ErrNotFound        myerror = NewMyError("not found")
	ErrInternalError   myerror = NewMyError("internal error")

	// ErrStaleRun marks an aggregation whose input was superseded by a
	// newer run before it finished; its Summary must not be displayed.
	ErrStaleRun myerror = NewMyError("stale run")
)
