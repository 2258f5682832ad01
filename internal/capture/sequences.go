package capture

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed sequences.yaml
var sequencesYAML []byte

type sequenceTable struct {
	Sequences []SequenceRef `yaml:"sequences"`
}

var (
	sequencesOnce  sync.Once
	sequencesByOld map[string]SequenceRef
)

func loadSequences() {
	var table sequenceTable
	if err := yaml.Unmarshal(sequencesYAML, &table); err != nil {
		// The table is embedded and covered by tests; a parse failure here
		// is a build defect, not a runtime condition.
		panic("capture: embedded sequence table is invalid: " + err.Error())
	}
	sequencesByOld = make(map[string]SequenceRef, len(table.Sequences))
	for _, seq := range table.Sequences {
		sequencesByOld[seq.OldName] = seq
	}
}

// LookupSequence resolves a legacy homing-type display name to its new-API
// sequence. Names outside the table pass through lowercased with a home_
// prefix so site-specific routines still produce importable names.
func LookupSequence(oldName string) SequenceRef {
	sequencesOnce.Do(loadSequences)
	if seq, ok := sequencesByOld[oldName]; ok {
		return seq
	}
	return SequenceRef{
		Name:    "home_" + strings.ToLower(oldName),
		OldName: oldName,
	}
}
