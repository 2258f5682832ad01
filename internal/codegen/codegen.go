// Package codegen renders a captured object graph as a new-API homing
// definition script. Rendering is deterministic: the same graph always
// produces byte-identical output, and no input shape can make it fail;
// unclassifiable post tokens degrade to verbatim raw-code blocks.
package codegen

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dls-controls/homing-convert/internal/capture"
)

// Sentinel is the trailing comment marking the end of generated output.
const Sentinel = "# End of auto converted homing definitions"

// Shebang builds the interpreter line emitted first.
func Shebang(interpreter string) string {
	return "#!/bin/env " + interpreter
}

// Generate renders the finalized PLC list, in input order, as new-API source.
func Generate(plcs []*capture.PLC, shebang string) []byte {
	var out strings.Builder
	level0, level1, level2 := indenter(0), indenter(1), indenter(2)

	out.WriteString(level0.line(shebang))
	out.WriteString(level0.line(
		"from pmac_motorhome.commands import ControllerType, PostHomeMove, comment, group, motor, plc"))
	if imports := collectSequenceImports(plcs); imports != "" {
		out.WriteString(level0.line("from pmac_motorhome.sequences import " + imports))
	}
	out.WriteString(level0.line(""))

	for _, plc := range plcs {
		out.WriteString(level0.line("with plc("))
		out.WriteString(level1.line(fmt.Sprintf("plc_num=%d,", plc.Number)))
		out.WriteString(level1.line(fmt.Sprintf("controller=ControllerType.%s,", plc.Controller)))
		out.WriteString(level1.line(fmt.Sprintf("filepath=%q,", plc.Filepath)))
		if plc.Timeout != capture.DefaultTimeout {
			out.WriteString(level1.line(fmt.Sprintf("timeout=%d", plc.Timeout)))
		}
		out.WriteString(level0.line("):"))

		groupNums := maps.Keys(plc.Groups)
		slices.Sort(groupNums)
		for _, num := range groupNums {
			group := plc.Groups[num]
			translation := TranslatePost(group.Post)
			extraArgs := translation.ExtraArgs

			if group.Pre != "" {
				pre := normalizeTabs(group.Pre)
				out.WriteString(level1.line(fmt.Sprintf(`pre%d = """%s """`, num, pre)))
				extraArgs += fmt.Sprintf(", pre=pre%d", num)
				out.WriteString(level0.line(""))
			}
			if translation.RawCode != "" {
				post := normalizeTabs(translation.RawCode)
				out.WriteString(level1.line(fmt.Sprintf(`post%d = """%s """`, num, post)))
				extraArgs += fmt.Sprintf(", post=post%d", num)
				out.WriteString(level0.line(""))
			}

			out.WriteString(level1.line(fmt.Sprintf("with group(group_num=%d%s):", group.Number, extraArgs)))
			for _, motor := range group.Motors {
				motorTranslation := TranslatePost(motor.Post)
				out.WriteString(level2.line(fmt.Sprintf("motor(axis=%d, jdist=%d, index=%d%s)",
					motor.Axis, motor.Jdist, motor.Index, motorTranslation.ExtraArgs)))
			}
			out.WriteString(level2.line(fmt.Sprintf("comment(%q, %q)",
				group.Sequence.OldName, translation.Display)))
			out.WriteString(level2.line(group.Sequence.Name + "()"))
			out.WriteString(level0.line(""))
		}
	}

	out.WriteString(level0.line(Sentinel))
	return []byte(out.String())
}

func collectSequenceImports(plcs []*capture.PLC) string {
	seen := map[string]struct{}{}
	for _, plc := range plcs {
		for _, group := range plc.Groups {
			if group.Sequence.Name != "" {
				seen[group.Sequence.Name] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return ""
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return strings.Join(names, ", ")
}

// normalizeTabs replaces tab characters in raw pre/post blocks with four
// spaces so the emitted triple-quoted text is indentation-safe.
func normalizeTabs(text string) string {
	return strings.ReplaceAll(text, "\t", "    ")
}
