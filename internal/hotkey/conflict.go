//go:build !linux || hotkey

package hotkey

import "golang.design/x/hotkey"

// ConflictInfo represents a key combination the stop hotkey should not shadow
type ConflictInfo struct {
	Name        string
	Description string
	Modifiers   []hotkey.Modifier
	Key         hotkey.Key
}

// knownConflicts lists terminal control keys. A global hotkey on one of these
// swallows the key before the terminal can turn it into a signal or EOF.
var knownConflicts = []ConflictInfo{
	{
		Name:        "Interrupt",
		Description: "Ctrl+C sends SIGINT to the foreground process",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyC,
	},
	{
		Name:        "EOF",
		Description: "Ctrl+D closes standard input",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyD,
	},
	{
		Name:        "Suspend",
		Description: "Ctrl+Z suspends the foreground process",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyZ,
	},
	{
		Name:        "Resume",
		Description: "Ctrl+Q resumes output (XON) on flow-controlled terminals",
		Modifiers:   []hotkey.Modifier{hotkey.ModCtrl},
		Key:         hotkey.KeyQ,
	},
}

// CheckConflicts checks if the given hotkey conflicts with terminal control keys
func CheckConflicts(modifiers []hotkey.Modifier, key hotkey.Key) []ConflictInfo {
	var conflicts []ConflictInfo

	for _, known := range knownConflicts {
		if hotkeyMatches(modifiers, key, known.Modifiers, known.Key) {
			conflicts = append(conflicts, known)
		}
	}

	return conflicts
}

// hotkeyMatches checks if two hotkey combinations are identical, ignoring modifier order
func hotkeyMatches(mods1 []hotkey.Modifier, key1 hotkey.Key, mods2 []hotkey.Modifier, key2 hotkey.Key) bool {
	if key1 != key2 || len(mods1) != len(mods2) {
		return false
	}

	set := make(map[hotkey.Modifier]int, len(mods1))
	for _, mod := range mods1 {
		set[mod]++
	}
	for _, mod := range mods2 {
		set[mod]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}

	return true
}
