package soundcloud

// Result holds either a success value of type T or a failure of type E.
//
// Exactly one of the two is set. A Result is immutable once constructed.
type Result[T, E any] struct {
	value T
	err   E
	ok    bool
}

// Success returns a Result holding v.
func Success[T, E any](v T) Result[T, E] {
	return Result[T, E]{value: v, ok: true}
}

// Failure returns a Result holding e.
func Failure[T, E any](e E) Result[T, E] {
	return Result[T, E]{err: e}
}

// IsSuccess reports whether r holds a value.
func (r Result[T, E]) IsSuccess() bool {
	return r.ok
}

// Value returns the success value and true, or the zero value and false.
func (r Result[T, E]) Value() (T, bool) {
	return r.value, r.ok
}

// Err returns the failure and true, or the zero value and false.
func (r Result[T, E]) Err() (E, bool) {
	return r.err, !r.ok
}

// Recover returns the success value, or transform applied to the failure.
// It always yields a T.
func (r Result[T, E]) Recover(transform func(E) T) T {
	if r.ok {
		return r.value
	}
	return transform(r.err)
}

// MapResult transforms the success value of r and keeps failures as they are.
func MapResult[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if r.ok {
		return Success[U, E](fn(r.value))
	}
	return Failure[U](r.err)
}
