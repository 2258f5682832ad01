// Package capture holds the object graph built as a side effect of executing
// a legacy homing definition script: one PLC per controller, groups keyed by
// group number inside each PLC, and motors in declaration order inside each
// group. The graph is what the code generator consumes and what the
// cross-process transport carries.
package capture

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dls-controls/homing-convert/internal/offsets"
)

type ControllerType string

const (
	ControllerBrick ControllerType = "brick"
	ControllerPmac  ControllerType = "pmac"
)

// DefaultTimeout is the legacy runtime's PLC timeout. The generator suppresses
// the timeout argument when a PLC still carries this value.
const DefaultTimeout = 600000

type PLC struct {
	Number     int            `json:"plc_num"`
	Controller ControllerType `json:"controller"`
	Filepath   string         `json:"filepath"`
	Timeout    int            `json:"timeout"`
	Groups     map[int]*Group `json:"groups"`
}

type Group struct {
	Number   int         `json:"group_num"`
	Sequence SequenceRef `json:"sequence"`
	Pre      string      `json:"pre,omitempty"`
	Post     PostToken   `json:"post"`
	Comment  string      `json:"comment,omitempty"`
	Motors   []*Motor    `json:"motors"`
}

// SequenceRef identifies the homing routine a group invokes: the canonical
// new-API function name plus the legacy display name used in traceability
// comments.
type SequenceRef struct {
	Name    string `json:"name" yaml:"name"`
	OldName string `json:"old_name" yaml:"old_name"`
}

type Motor struct {
	Axis    int          `json:"axis"`
	Jdist   int          `json:"jdist"`
	Index   int          `json:"index"`
	Post    PostToken    `json:"post"`
	Nx      string       `json:"nx"`
	Offsets MotorOffsets `json:"offsets"`
}

// MotorOffsets are the six P-variable addresses precomputed for a motor at
// declaration time from its PLC number and creation index.
type MotorOffsets struct {
	HiLim    int `json:"hi_lim"`
	LoLim    int `json:"lo_lim"`
	Homed    int `json:"homed"`
	NotHomed int `json:"not_homed"`
	LimFlags int `json:"lim_flags"`
	Pos      int `json:"pos"`
}

func computeOffsets(plcNum, index int) MotorOffsets {
	return MotorOffsets{
		HiLim:    offsets.Offset(offsets.FieldHiLim, plcNum, index),
		LoLim:    offsets.Offset(offsets.FieldLoLim, plcNum, index),
		Homed:    offsets.Offset(offsets.FieldHomed, plcNum, index),
		NotHomed: offsets.Offset(offsets.FieldNotHomed, plcNum, index),
		LimFlags: offsets.Offset(offsets.FieldLimFlags, plcNum, index),
		Pos:      offsets.Offset(offsets.FieldPos, plcNum, index),
	}
}

// PostToken is a legacy post-home disposition exactly as the script supplied
// it. The legacy runtime distinguished the number 100 from the string "100"
// (the former is an absolute move, the latter raw code), so the token records
// whether the value was numeric. Classification happens in the generator, not
// here; capture never rejects a token.
type PostToken struct {
	Raw     string
	Numeric bool
	Absent  bool
}

func NoPost() PostToken { return PostToken{Absent: true} }

func StringPost(s string) PostToken { return PostToken{Raw: s} }

func NumericPost(s string) PostToken { return PostToken{Raw: s, Numeric: true} }

// String renders the token the way the legacy runtime printed it, which is
// what traceability comments record.
func (p PostToken) String() string {
	if p.Absent {
		return "None"
	}
	return p.Raw
}

func (p PostToken) MarshalJSON() ([]byte, error) {
	if p.Absent {
		return []byte("null"), nil
	}
	if p.Numeric {
		if _, err := strconv.ParseFloat(p.Raw, 64); err == nil {
			return []byte(p.Raw), nil
		}
	}
	return json.Marshal(p.Raw)
}

func (p *PostToken) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*p = NoPost()
		return nil
	}
	if text != "" && text[0] != '"' {
		*p = NumericPost(text)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = StringPost(s)
	return nil
}

// Registry collects every PLC captured during one harness run and owns the
// process-scoped motor creation counter. The orchestrator creates a fresh
// Registry per run and discards it afterwards, so state from one script can
// never leak into the next.
type Registry struct {
	plcs       []*PLC
	motorCount int
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) PLCs() []*PLC {
	return r.plcs
}

func (r *Registry) Len() int {
	return len(r.plcs)
}

// Append merges an externally captured PLC into the registry. Used when
// draining transport messages from a child process.
func (r *Registry) Append(plc *PLC) {
	if plc == nil {
		return
	}
	r.plcs = append(r.plcs, plc)
	for _, group := range plc.Groups {
		for _, motor := range group.Motors {
			if motor.Index >= r.motorCount {
				r.motorCount = motor.Index + 1
			}
		}
	}
}

func (r *Registry) nextMotorIndex() int {
	idx := r.motorCount
	r.motorCount++
	return idx
}
