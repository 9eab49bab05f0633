package domain

// Status represents the lifecycle state of a match
type Status string

const (
	StatusWaiting  Status = "WAITING"  // Fewer than two participants seated
	StatusPlaying  Status = "PLAYING"  // Round loop active
	StatusFinished Status = "FINISHED" // Terminal state
)

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if a transition from the current status to the target is valid
func (s Status) CanTransitionTo(target Status) bool {
	validTransitions := map[Status][]Status{
		StatusWaiting: {StatusPlaying, StatusFinished},
		StatusPlaying: {StatusFinished},
	}

	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}
