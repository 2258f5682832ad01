package codegen

import (
	"testing"

	"github.com/dls-controls/homing-convert/internal/capture"
)

func TestTranslatePostTable(t *testing.T) {
	cases := []struct {
		name      string
		token     capture.PostToken
		extraArgs string
		rawCode   string
		display   string
	}{
		{"absent", capture.NoPost(), "", "", "None"},
		{"zero string", capture.StringPost("0"), "", "", "0"},
		{"zero numeric", capture.NumericPost("0"), "", "", "0"},
		{"initial position", capture.StringPost("i"),
			", post_home=PostHomeMove.initial_position", "", "i"},
		{"high limit", capture.StringPost("h"),
			", post_home=PostHomeMove.high_limit", "", "h"},
		{"low limit", capture.StringPost("l"),
			", post_home=PostHomeMove.low_limit", "", "l"},
		{"hard high limit", capture.StringPost("H"),
			", post_home=PostHomeMove.hard_hi_limit", "", "H"},
		{"hard low limit", capture.StringPost("L"),
			", post_home=PostHomeMove.hard_lo_limit", "", "L"},
		{"relative move", capture.StringPost("r1000"),
			", post_home=PostHomeMove.relative_move, post_distance=1000", "", "r1000"},
		{"relative move negative", capture.StringPost("r-250"),
			", post_home=PostHomeMove.relative_move, post_distance=-250", "", "r-250"},
		{"move and hmz", capture.StringPost("z500"),
			", post_home=PostHomeMove.move_and_hmz, post_distance=500", "", "z500"},
		{"absolute integer", capture.NumericPost("100"),
			", post_home=PostHomeMove.move_absolute, post_distance=100", "", "100"},
		{"absolute real", capture.NumericPost("-2.5"),
			", post_home=PostHomeMove.move_absolute, post_distance=-2.5", "", "-2.5"},
		{"numeric-looking string is raw code", capture.StringPost("100"),
			"", "100", "None"},
		{"arbitrary raw code", capture.StringPost("P1100=1 P1101=0"),
			"", "P1100=1 P1101=0", "None"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TranslatePost(tc.token)
			if got.ExtraArgs != tc.extraArgs {
				t.Fatalf("extra args %q, want %q", got.ExtraArgs, tc.extraArgs)
			}
			if got.RawCode != tc.rawCode {
				t.Fatalf("raw code %q, want %q", got.RawCode, tc.rawCode)
			}
			if got.Display != tc.display {
				t.Fatalf("display %q, want %q", got.Display, tc.display)
			}
		})
	}
}

func TestTranslatePostRawRoundTripsVerbatim(t *testing.T) {
	raw := "cmd \"#1J/\"\n\tdwell 500"
	got := TranslatePost(capture.StringPost(raw))
	if got.RawCode != raw {
		t.Fatalf("raw code changed: %q -> %q", raw, got.RawCode)
	}
}
