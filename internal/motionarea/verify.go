package motionarea

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MismatchPair names one old/new output file pair whose contents differ.
type MismatchPair struct {
	Old string
	New string
}

// Promotion is the suggested command to move a generated new-API script over
// the legacy script it replaces. It is reported, never applied.
type Promotion struct {
	From string
	To   string
}

// Verification is the outcome of comparing every regenerated homing PLC in
// the old tree against its counterpart in the new tree.
type Verification struct {
	Compared   int
	Mismatches []MismatchPair
	Missing    []string
	Promotions []Promotion
	OldRoot    string
	NewRoot    string
}

func (v *Verification) Ok() bool {
	return len(v.Mismatches) == 0 && len(v.Missing) == 0
}

// Report renders the human-readable verification summary. The promotion
// command is emitted regardless of the outcome, matching the legacy
// converter's behavior.
func (v *Verification) Report() string {
	var b strings.Builder
	failed := len(v.Mismatches) + len(v.Missing)
	if failed == 0 {
		fmt.Fprintf(&b, "Success: 0 of %d new generated PLCs don't match old PLCs\n", v.Compared)
	} else {
		fmt.Fprintf(&b, "Failure: %d of %d PLC files do not match\n", failed, v.Compared)
		fmt.Fprintf(&b, "review differences with:\nmeld %s %s\n", v.OldRoot, v.NewRoot)
		if len(v.Mismatches) > 0 {
			b.WriteString("The following PLCs did not match the originals:\n")
			for _, pair := range v.Mismatches {
				fmt.Fprintf(&b, "%s %s\n", pair.Old, pair.New)
			}
		}
		for _, missing := range v.Missing {
			fmt.Fprintf(&b, "missing from new tree: %s\n", missing)
		}
	}
	if len(v.Promotions) > 0 {
		b.WriteString("To copy the new generating scripts, use the following commands:\n")
		for _, p := range v.Promotions {
			fmt.Fprintf(&b, "mv %s %s\n", p.From, p.To)
		}
	}
	return b.String()
}

// equivalentText compares controller text ignoring blank lines and
// whitespace-run differences, the same equivalence diff -bB reports.
func equivalentText(a, b string) bool {
	return normalizeForCompare(a) == normalizeForCompare(b)
}

func normalizeForCompare(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}

// verifyTrees walks every regenerated homing PLC under oldRoot and compares
// it with the correspondingly named file under newRoot.
func verifyTrees(oldRoot, newRoot string, promotions []Promotion) (*Verification, error) {
	result := &Verification{
		Promotions: promotions,
		OldRoot:    oldRoot,
		NewRoot:    newRoot,
	}
	oldPLCs, err := findHomingPLCs(oldRoot)
	if err != nil {
		return nil, err
	}
	for _, oldPLC := range oldPLCs {
		result.Compared++
		rel, err := filepath.Rel(oldRoot, oldPLC)
		if err != nil {
			return nil, err
		}
		newPLC := filepath.Join(newRoot, rel)
		newData, err := os.ReadFile(newPLC)
		if err != nil {
			if os.IsNotExist(err) {
				result.Missing = append(result.Missing, newPLC)
				continue
			}
			return nil, fmt.Errorf("read %s: %w", newPLC, err)
		}
		oldData, err := os.ReadFile(oldPLC)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", oldPLC, err)
		}
		if !equivalentText(string(oldData), string(newData)) {
			result.Mismatches = append(result.Mismatches, MismatchPair{Old: oldPLC, New: newPLC})
		}
	}
	return result, nil
}
