package constants

// ScenarioKind names one of the two simulated maneuvers.
type ScenarioKind string

const (
	// KindAccelerate is straight-line acceleration toward a fixed wish direction.
	KindAccelerate ScenarioKind = "accelerate"

	// KindTurn is the optimal perpendicular turn.
	KindTurn ScenarioKind = "turn"
)

// Valid returns true if the kind is a recognized value.
func (k ScenarioKind) Valid() bool {
	switch k {
	case KindAccelerate, KindTurn:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k ScenarioKind) String() string {
	return string(k)
}
