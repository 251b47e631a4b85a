// Package policy defines the tagged result consumed by every guarded
// operation. Authorization checks live in the projectpolicy and
// taskpolicy subpackages; both are pure functions over loaded documents,
// so existence and permission resolve in one place and handlers map the
// result to a response uniformly.
package policy

// Decision is the outcome of an authorization check.
type Decision int

const (
	// Allowed means the caller may perform the operation.
	Allowed Decision = iota
	// Forbidden means the target exists but the caller may not act on it.
	Forbidden
	// NotFound means the target does not exist. Checks take the target as
	// a possibly-nil pointer so existence is decided before permission.
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}
