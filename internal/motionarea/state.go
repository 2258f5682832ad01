package motionarea

import "fmt"

// RunState tracks a conversion run through its pipeline. A run moves strictly
// forward; any step may drop to failed.
type RunState string

const (
	StateInit         RunState = "init"
	StateOldGenerated RunState = "old_generated"
	StateNewGenerated RunState = "new_generated"
	StateVerified     RunState = "verified"
	StateFailed       RunState = "failed"
)

var allowedTransitions = map[RunState]map[RunState]struct{}{
	StateInit: {
		StateOldGenerated: {},
		StateFailed:       {},
	},
	StateOldGenerated: {
		StateNewGenerated: {},
		StateFailed:       {},
	},
	StateNewGenerated: {
		StateVerified: {},
		StateFailed:   {},
	},
	StateVerified: {},
	StateFailed:   {},
}

func ValidateRunState(state RunState) error {
	if _, ok := allowedTransitions[state]; !ok {
		return fmt.Errorf("invalid run state: %q", state)
	}
	return nil
}

func ValidateTransition(from, to RunState) error {
	if err := ValidateRunState(from); err != nil {
		return err
	}
	if err := ValidateRunState(to); err != nil {
		return err
	}
	if _, ok := allowedTransitions[from][to]; !ok {
		return fmt.Errorf("invalid run transition: %s -> %s", from, to)
	}
	return nil
}
