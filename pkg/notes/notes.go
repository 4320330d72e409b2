// Package notes converts note names typed into value objects to the scalar
// the engine expects: one semitone is 1/120, a4 is zero.
package notes

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrNotANote is returned by Parse for text that is not a note name.
var ErrNotANote = errors.New("not a note name")

var noteRegexp = regexp.MustCompile(`^([a-gA-G])(#)?([0-9]+)$`)

// Semitone offsets from a within the octave.
var tones = map[string]int{
	"c": -9,
	"d": -7,
	"e": -5,
	"f": -4,
	"g": -2,
	"a": 0,
	"b": 2,
}

// Parse converts a note such as "a4", "c#5" or "G2" to its value.
func Parse(note string) (float64, error) {
	m := noteRegexp.FindStringSubmatch(note)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANote, note)
	}
	sharp := 0
	if m[2] == "#" {
		sharp = 1
	}
	octave, err := strconv.Atoi(m[3])
	if err != nil {
		return 0, fmt.Errorf("%w: octave %q: %v", ErrNotANote, m[3], err)
	}
	return float64(tones[strings.ToLower(m[1])]+sharp+(octave-4)*12) / 120, nil
}

// ParseValue accepts either a note name or a plain number.
// isNote reports which form was recognized.
func ParseValue(text string) (v float64, isNote bool, err error) {
	text = strings.TrimSpace(text)
	if v, err := Parse(text); err == nil {
		return v, true, nil
	}
	v, err = strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid value %q: expected a number or a note name", text)
	}
	return v, false, nil
}
