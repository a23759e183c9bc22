package domain

// Observable is the reference handed to observers registered with
// pass-observed. It is the stable outer wrapper, never the raw target.
type Observable interface {
	// Name is the function or method name.
	Name() string
	// Owner is the bound instance, or nil for free functions and for bound
	// observables whose owner has been collected.
	Owner() any
	// Equal reports whether other wraps the same target on the same owner.
	Equal(other Observable) bool
}
