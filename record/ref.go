package record

// Ref is a mutable cell read by records at flush time. Records holding a Ref
// make their list dynamic: it is interpreted rather than compiled.
type Ref[T any] struct {
	v T
}

// NewRef returns a Ref holding v.
func NewRef[T any](v T) *Ref[T] {
	return &Ref[T]{v: v}
}

// Get returns the current value.
func (r *Ref[T]) Get() T { return r.v }

// Set replaces the value. The next flush of any surface holding r sees it.
func (r *Ref[T]) Set(v T) { r.v = v }

// Value is a record argument that is either a literal or a Ref.
// The zero Value is the literal zero of T.
type Value[T any] struct {
	lit T
	ref *Ref[T]
}

// Lit wraps a literal.
func Lit[T any](v T) Value[T] {
	return Value[T]{lit: v}
}

// Dyn wraps a reference.
func Dyn[T any](r *Ref[T]) Value[T] {
	return Value[T]{ref: r}
}

// Get returns the literal, or the current value of the reference.
func (v Value[T]) Get() T {
	if v.ref != nil {
		return v.ref.v
	}
	return v.lit
}

// IsDynamic reports whether v reads through a Ref.
func (v Value[T]) IsDynamic() bool { return v.ref != nil }
