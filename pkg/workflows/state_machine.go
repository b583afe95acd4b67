package workflows

// Status is a document lifecycle state.
type Status string

const (
	StatusUploaded  Status = "uploaded"
	StatusSigning   Status = "signing"
	StatusSigned    Status = "signed"
	StatusCompleted Status = "completed"
)

// StateMachine enforces document status transitions. Transitions only move
// forward: a signed document never returns to uploaded or signing.
type StateMachine struct {
	allowedTransitions map[Status][]Status
}

// NewStateMachine creates a state machine with the allowed transitions.
// StatusCompleted is terminal and only ever set by an external workflow.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[Status][]Status{
			StatusUploaded:  {StatusSigning, StatusSigned},
			StatusSigning:   {StatusSigned},
			StatusSigned:    {StatusCompleted},
			StatusCompleted: {},
		},
	}
}

// CanTransition checks if a status transition is allowed.
func (sm *StateMachine) CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status.
func (sm *StateMachine) GetAllowedTransitions(from Status) []Status {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []Status{}
	}
	return allowed
}
