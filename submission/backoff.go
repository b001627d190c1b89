package submission

import "time"

// SyncState describes where a sync pass currently is. The state
// machine is linear: Idle -> Probing (attempt N) -> Draining -> Idle,
// with Probing -> Idle when connectivity never shows up.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncProbing
	SyncDraining
)

func (s SyncState) String() string {
	switch s {
	case SyncProbing:
		return "probing"
	case SyncDraining:
		return "draining"
	default:
		return "idle"
	}
}

// NextBackoff returns the delay to wait after connectivity probe
// number attempt (1-based) fails: the base delay, doubling with each
// attempt. Pure, so backoff behavior is testable without timers.
func NextBackoff(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << uint(attempt-1)
}
