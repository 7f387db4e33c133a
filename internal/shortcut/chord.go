package shortcut

import (
	"fmt"
	"sort"
	"strings"
)

// Modifier names follow sway's bindsym vocabulary so a Chord can be handed
// to the compositor as is.
const (
	ModSuper = "Mod4"
	ModCtrl  = "Ctrl"
	ModAlt   = "Mod1"
	ModShift = "Shift"
)

var modifierAliases = map[string]string{
	"mod4":    ModSuper,
	"super":   ModSuper,
	"logo":    ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"mod1":    ModAlt,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
}

// modifierOrder is the order modifiers are printed in.
var modifierOrder = map[string]int{
	ModSuper: 0,
	ModCtrl:  1,
	ModAlt:   2,
	ModShift: 3,
}

// Chord is a set of modifiers plus one key.
type Chord struct {
	Modifiers []string
	Key       string
}

// ParseChord reads "mod+mod+key". At least one modifier is required.
func ParseChord(s string) (Chord, error) {
	parts := strings.Split(s, "+")
	if len(parts) < 2 {
		return Chord{}, fmt.Errorf("invalid chord: %q (need modifier+key)", s)
	}

	key := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))
	if key == "" {
		return Chord{}, fmt.Errorf("invalid chord: %q (empty key)", s)
	}

	var mods []string
	for _, p := range parts[:len(parts)-1] {
		name, ok := NormalizeModifier(p)
		if !ok {
			return Chord{}, fmt.Errorf("invalid chord: %q (unknown modifier %q)", s, strings.TrimSpace(p))
		}
		mods = append(mods, name)
	}

	return Chord{Modifiers: canonical(mods), Key: key}, nil
}

// MustParseChord is ParseChord for constants.
func MustParseChord(s string) Chord {
	c, err := ParseChord(s)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeModifier maps an alias to its canonical name. Modifiers that never
// take part in a chord, such as Lock or Mod2 (NumLock), report false.
func NormalizeModifier(m string) (string, bool) {
	name, ok := modifierAliases[strings.ToLower(strings.TrimSpace(m))]
	return name, ok
}

// With returns a copy of c that also requires mod.
func (c Chord) With(mod string) Chord {
	name, ok := NormalizeModifier(mod)
	if !ok {
		return c
	}
	mods := append(append([]string{}, c.Modifiers...), name)
	return Chord{Modifiers: canonical(mods), Key: c.Key}
}

// Match reports whether a key press with the given modifiers is exactly this
// chord. Unknown modifiers in the press are ignored.
func (c Chord) Match(modifiers []string, key string) bool {
	if !strings.EqualFold(c.Key, key) {
		return false
	}

	var pressed []string
	for _, m := range modifiers {
		if name, ok := NormalizeModifier(m); ok {
			pressed = append(pressed, name)
		}
	}
	pressed = canonical(pressed)

	if len(pressed) != len(c.Modifiers) {
		return false
	}
	for i := range pressed {
		if pressed[i] != c.Modifiers[i] {
			return false
		}
	}
	return true
}

func (c Chord) String() string {
	return strings.Join(append(append([]string{}, c.Modifiers...), c.Key), "+")
}

// canonical sorts and dedupes modifier names.
func canonical(mods []string) []string {
	seen := make(map[string]bool, len(mods))
	out := make([]string, 0, len(mods))
	for _, m := range mods {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return modifierOrder[out[i]] < modifierOrder[out[j]]
	})
	return out
}
