// Package options holds the functional options shared by decoders, sources,
// the store and the tailer.
//
// Every package declares its own alias, e.g.
//
//	type Option = options.Option[*config]
//
// and builds options with New when an argument can be rejected, or NoError
// when it cannot.
package options

// Option mutates a target of type T. The method is unexported, so options can
// only be built through this package.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a closure to Option. A nil Func does nothing.
type Func[T any] func(T) error

func (f Func[T]) apply(target T) error {
	if f == nil {
		return nil
	}

	return f(target)
}

// New returns an option whose closure can reject the target's new state.
func New[T any](fn func(T) error) Func[T] {
	return fn
}

// NoError returns an option that always succeeds.
func NoError[T any](fn func(T)) Func[T] {
	return func(target T) error {
		fn(target)
		return nil
	}
}

// Apply runs opts against target in order. The first error stops it and is
// returned unwrapped, so callers can match option sentinels with errors.Is.
// Nil options are skipped.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
