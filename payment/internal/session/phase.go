package session

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseProcessing Phase = "processing"
	PhaseSucceeded  Phase = "succeeded"
	PhaseCancelled  Phase = "cancelled"
	PhaseFailed     Phase = "failed"
)

// IsTerminal reports whether the phase waits to be acknowledged before the
// session goes back to idle.
func (p Phase) IsTerminal() bool {
	return p == PhaseSucceeded || p == PhaseCancelled || p == PhaseFailed
}

func (p Phase) String() string {
	return string(p)
}
