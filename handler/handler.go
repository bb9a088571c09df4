// Package handler defines the single-method callback contract shared by the
// sysex and block packages: report a structured event, get back a signal
// telling the caller whether to keep going.
package handler

// Signal tells a scanning/decoding loop whether to continue after an event
// has been reported.
type Signal bool

const (
	// Continue means keep processing.
	Continue Signal = true
	// Stop means abort immediately; the caller's operation returns early.
	Stop Signal = false
)

// Handler receives one event at a time and decides whether processing
// should continue.
type Handler[T any] interface {
	On(event T) Signal
}

// Func adapts a plain function to a Handler.
type Func[T any] func(event T) Signal

// On implements Handler.
func (f Func[T]) On(event T) Signal {
	return f(event)
}

// Collect returns a Handler that appends every event to the slice pointed to
// by dst and always continues. It's the handler most tests and simple
// callers want: "gather everything, never abort."
func Collect[T any](dst *[]T) Handler[T] {
	return Func[T](func(event T) Signal {
		*dst = append(*dst, event)
		return Continue
	})
}
