package motionarea

import "testing"

func TestValidateTransition(t *testing.T) {
	valid := []struct{ from, to RunState }{
		{StateInit, StateOldGenerated},
		{StateOldGenerated, StateNewGenerated},
		{StateNewGenerated, StateVerified},
		{StateInit, StateFailed},
		{StateOldGenerated, StateFailed},
		{StateNewGenerated, StateFailed},
	}
	for _, tc := range valid {
		if err := ValidateTransition(tc.from, tc.to); err != nil {
			t.Fatalf("transition %s -> %s should be allowed: %v", tc.from, tc.to, err)
		}
	}

	invalid := []struct{ from, to RunState }{
		{StateInit, StateNewGenerated},
		{StateInit, StateVerified},
		{StateOldGenerated, StateVerified},
		{StateVerified, StateInit},
		{StateFailed, StateInit},
		{StateNewGenerated, StateOldGenerated},
	}
	for _, tc := range invalid {
		if err := ValidateTransition(tc.from, tc.to); err == nil {
			t.Fatalf("transition %s -> %s must be rejected", tc.from, tc.to)
		}
	}

	if err := ValidateRunState("bogus"); err == nil {
		t.Fatalf("unknown state must be rejected")
	}
}
