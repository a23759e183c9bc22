package domain

import "errors"

// ErrConfiguration is returned when an observable cannot be set up as requested.
var ErrConfiguration = errors.New("invalid configuration")

// ErrUnknownStrategy is returned when a persistence strategy token is not recognized.
var ErrUnknownStrategy = errors.New("unknown persistence strategy")

// ErrInvariant marks a broken internal invariant. It is raised by panicking.
var ErrInvariant = errors.New("invariant violated")

// ErrSlotConflict is raised when a second method claims an instance slot that
// is already bound to an observable of a different shape.
var ErrSlotConflict = errors.New("observable slot already bound")

// ErrDeadOwner is raised when a bound observable is called after its owner was collected.
var ErrDeadOwner = errors.New("observable owner no longer exists")

// ErrNilOwner is raised when a method is bound to a nil instance.
var ErrNilOwner = errors.New("observable method bound to nil owner")

// ErrObserverFailed wraps the first error returned by an observer during dispatch.
var ErrObserverFailed = errors.New("observer failed")
