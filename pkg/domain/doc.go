/*
Package domain contains the shared vocabulary of the observer registry.

It defines the Observable contract handed to observers, the persistence
strategies for observable methods, registry lifecycle hooks, and the sentinel
errors. This package is kept free of runtime machinery so every other package
can depend on it.

# Error taxonomy

  - ErrConfiguration / ErrUnknownStrategy: returned at setup time.
  - ErrObserverFailed: returned from a call when an observer fails; dispatch stops there.
  - ErrInvariant, ErrSlotConflict, ErrDeadOwner, ErrNilOwner: defects, raised by panicking.
*/
package domain
