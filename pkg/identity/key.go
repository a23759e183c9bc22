// Package identity derives the keys that distinguish one observer registration
// from another.
//
// A key is either a Function key (the identity of an observer handle) or a
// Method key (the identity of an owning instance plus a method name). Identity
// is carried by weak.Pointer values, which compare equal exactly when the
// pointers they were made from compare equal, and keep doing so after the
// referent has been collected. Keys therefore never alias a new object that
// happens to reuse a dead object's address.
package identity

import (
	"fmt"
	"weak"
)

// Kind tags the variant of a Key.
type Kind uint8

const (
	KindFunction Kind = iota + 1
	KindMethod
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Key is a comparable registration identity. The zero Key matches nothing
// produced by FunctionOf or MethodOf.
type Key struct {
	kind   Kind
	ref    any
	method string
	label  string
}

// Identifiable is implemented by anything that can be registered as an
// observer.
type Identifiable interface {
	Key() Key
}

// FunctionOf returns the key of a free observer handle. Two distinct handles
// wrapping identical code are distinct observers.
func FunctionOf[T any](p *T) Key {
	return Key{kind: KindFunction, ref: weak.Make(p), label: fmt.Sprintf("%T@%p", p, p)}
}

// MethodOf returns the key of a method bound to owner. Every bound form of the
// same (owner, name) pair collapses to one key.
func MethodOf[T any](owner *T, name string) Key {
	return Key{kind: KindMethod, ref: weak.Make(owner), method: name, label: fmt.Sprintf("%T@%p", owner, owner)}
}

// Kind reports whether k names a free function or a bound method.
func (k Key) Kind() Kind { return k.kind }

// Method returns the method name of a method key, or "" for function keys.
func (k Key) Method() string { return k.method }

// IsZero reports whether k was never derived.
func (k Key) IsZero() bool { return k.kind == 0 }

func (k Key) String() string {
	switch k.kind {
	case KindFunction:
		return "func(" + k.label + ")"
	case KindMethod:
		return "method(" + k.label + "." + k.method + ")"
	default:
		return "key(zero)"
	}
}
