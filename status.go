package membership

// NodeStatus is totally ordered by priority, low to high. Higher priority
// wins on a same-version merge conflict (§4.2). Joining and Leaving are
// self-applied by the owning node; Up, Exiting and Down are applied by an
// external leader/downing collaborator through Instance.Promote.
type NodeStatus uint8

const (
	StatusJoining NodeStatus = 1
	StatusUp      NodeStatus = 2
	StatusLeaving NodeStatus = 3
	StatusExiting NodeStatus = 4
	StatusDown    NodeStatus = 5
)

// String renders a human-readable status name, used in logs and in the
// demo's JSON status API.
func (s NodeStatus) String() string {
	switch s {
	case StatusJoining:
		return "joining"
	case StatusUp:
		return "up"
	case StatusLeaving:
		return "leaving"
	case StatusExiting:
		return "exiting"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// maxStatus returns the higher-priority of a and b.
func maxStatus(a, b NodeStatus) NodeStatus {
	if b > a {
		return b
	}
	return a
}
