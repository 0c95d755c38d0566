package session

// State is the session's authentication lifecycle. A session starts
// Uninitialized, passes through Loading while the current user is being
// fetched, and settles in Authenticated or Anonymous. There is no
// terminal state; a session moves between Authenticated and Anonymous
// any number of times.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}
