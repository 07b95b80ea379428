// Package assert provides runtime assertion checking for invariants that must never be violated
// by well-formed input. It must never be used to validate user-supplied source; malformed source
// is reported as a typed error instead.
package assert

import "fmt"

// That panics if condition is false.
func That(condition bool, msg string, args ...any) {
	if condition {
		return
	}

	if len(args) > 0 {
		panic(fmt.Sprintf(msg, args...))
	}
	panic(msg)
}
