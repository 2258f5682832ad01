package codegen

import (
	"regexp"

	"github.com/dls-controls/homing-convert/internal/capture"
)

var (
	relativeMovePattern = regexp.MustCompile(`^r(-?\d+)`)
	moveAndHmzPattern   = regexp.MustCompile(`^z(-?\d+)`)
)

// PostTranslation is the new-API rendering of a legacy post-home token.
// ExtraArgs is the keyword-argument suffix spliced into the group or motor
// construct; RawCode is the verbatim block used when the token matches no
// known short code.
type PostTranslation struct {
	ExtraArgs string
	RawCode   string
	Display   string
}

// TranslatePost classifies a legacy post-home token. The table is total:
// every token maps to exactly one of no-op, a named action (with optional
// distance), or raw code. Unknown tokens degrade to raw code and report a
// "None" disposition for the traceability comment, matching the legacy
// converter.
func TranslatePost(token capture.PostToken) PostTranslation {
	display := token.String()

	switch {
	case token.Absent, token.Raw == "0":
		return PostTranslation{Display: display}
	case token.Numeric:
		return PostTranslation{
			ExtraArgs: ", post_home=PostHomeMove.move_absolute, post_distance=" + token.Raw,
			Display:   display,
		}
	}

	switch token.Raw {
	case "i":
		return PostTranslation{ExtraArgs: ", post_home=PostHomeMove.initial_position", Display: display}
	case "h":
		return PostTranslation{ExtraArgs: ", post_home=PostHomeMove.high_limit", Display: display}
	case "l":
		return PostTranslation{ExtraArgs: ", post_home=PostHomeMove.low_limit", Display: display}
	case "H":
		return PostTranslation{ExtraArgs: ", post_home=PostHomeMove.hard_hi_limit", Display: display}
	case "L":
		return PostTranslation{ExtraArgs: ", post_home=PostHomeMove.hard_lo_limit", Display: display}
	}

	if m := relativeMovePattern.FindStringSubmatch(token.Raw); m != nil {
		return PostTranslation{
			ExtraArgs: ", post_home=PostHomeMove.relative_move, post_distance=" + m[1],
			Display:   display,
		}
	}
	if m := moveAndHmzPattern.FindStringSubmatch(token.Raw); m != nil {
		return PostTranslation{
			ExtraArgs: ", post_home=PostHomeMove.move_and_hmz, post_distance=" + m[1],
			Display:   display,
		}
	}

	return PostTranslation{RawCode: token.Raw, Display: "None"}
}
