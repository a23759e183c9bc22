/*
Package observable makes functions and methods observable.

Wrap turns a free function into a *Function. NewMethod turns a method into a
*Method, which yields one independent Bound observable per instance. Calling
an observable runs the wrapped code, then every registered observer in
registration order with the same argument.

Observers are never kept alive by the observable they watch. A handler, an
instance or another observable that is collected leaves every registry it was
in, without a Discard call. Two observables may observe each other without
forming a reference cycle.

# Observers

  - Func and FuncFrom wrap plain functions. The returned handle is the identity.
  - MethodOf and MethodFrom bind a method to an instance. The identity is the
    pair (instance, name), so binding twice yields the same observer.
  - A *Function or a Bound is itself an observer.

Observers added with AddIdentified receive the observable as well, so one
handler can tell its sources apart.

# Persistence strategies

With domain.StrategyInstanceAttached (the default) the per-instance registry
lives in an embedded Slots field. With domain.StrategySideTable it lives in a
table owned by the Method, keyed weakly by instance; the type needs no
changes.
*/
package observable
