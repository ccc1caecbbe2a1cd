package action

// Tier classifies an action by how much caution it warrants.
// The order is meaningful: green < yellow < red.
type Tier int32

const (
	TierUnspecified Tier = 0
	// TierGreen actions auto-execute (read-only, safe).
	TierGreen Tier = 1
	// TierYellow actions execute, but the user must be notified.
	TierYellow Tier = 2
	// TierRed actions are blocked until explicitly approved.
	TierRed Tier = 3
)

func (t Tier) String() string {
	switch t {
	case TierGreen:
		return "green"
	case TierYellow:
		return "yellow"
	case TierRed:
		return "red"
	default:
		return "unspecified"
	}
}

// DefaultAgentName is used when a request does not name its issuing agent.
const DefaultAgentName = "unknown"

// Request describes an action an agent wants to perform. It is a plain
// value; the gate never mutates it.
type Request struct {
	Type       string         `json:"action_type"`
	Parameters map[string]any `json:"parameters"`
	Reason     string         `json:"reason"`
	AgentName  string         `json:"agent_name"`
}

// Command returns the shell command carried in the parameters, if any.
func (r Request) Command() (string, bool) {
	v, ok := r.Parameters["command"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Outcome is the gate's final answer for one request. Decisions are
// returned as data, never as errors.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeExecuted Outcome = "executed"
	OutcomeBlocked  Outcome = "blocked"
	OutcomePending  Outcome = "pending"
)
