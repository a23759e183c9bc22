/*
Package observability exports observer registry activity as Prometheus metrics.

Metrics implements its collectors on top of domain.RegistryHooks, so any
observable can be instrumented by passing Metrics.Hooks through
observable.WithHooks. Observables with the same name share label values:
every instance of an observable method reports under the method name.
*/
package observability
