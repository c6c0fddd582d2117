package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "scene_001.mp3", "scene_001.mp3"},
		{"slashes", "a/b\\c", "a-b-c"},
		{"colon and asterisk", "take: 2 *final*", "take- 2 -final-"},
		{"removed characters", `clip?"<>|.mp4`, "clip.mp4"},
		{"whitespace trimmed", "  draft.txt  ", "draft.txt"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeFileName(tc.input); got != tc.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Harbor Dawn", "harbor_dawn"},
		{"keeps digits and dashes", "take-2_final", "take-2_final"},
		{"collapses punctuation", "The Fleet: Part 1!", "the_fleet__part_1"},
		{"trims edge underscores", "!!video!!", "video"},
		{"empty becomes unknown", "   ", "unknown"},
		{"only punctuation becomes unknown", "!?!", "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeToken(tc.input); got != tc.want {
				t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
