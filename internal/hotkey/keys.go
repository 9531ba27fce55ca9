//go:build !linux || hotkey

package hotkey

import (
	"fmt"
	"strings"

	"golang.design/x/hotkey"
)

var keyMap = map[string]hotkey.Key{
	"SPACE":  hotkey.KeySpace,
	"A":      hotkey.KeyA,
	"B":      hotkey.KeyB,
	"C":      hotkey.KeyC,
	"D":      hotkey.KeyD,
	"E":      hotkey.KeyE,
	"F":      hotkey.KeyF,
	"G":      hotkey.KeyG,
	"H":      hotkey.KeyH,
	"I":      hotkey.KeyI,
	"J":      hotkey.KeyJ,
	"K":      hotkey.KeyK,
	"L":      hotkey.KeyL,
	"M":      hotkey.KeyM,
	"N":      hotkey.KeyN,
	"O":      hotkey.KeyO,
	"P":      hotkey.KeyP,
	"Q":      hotkey.KeyQ,
	"R":      hotkey.KeyR,
	"S":      hotkey.KeyS,
	"T":      hotkey.KeyT,
	"U":      hotkey.KeyU,
	"V":      hotkey.KeyV,
	"W":      hotkey.KeyW,
	"X":      hotkey.KeyX,
	"Y":      hotkey.KeyY,
	"Z":      hotkey.KeyZ,
	"0":      hotkey.Key0,
	"1":      hotkey.Key1,
	"2":      hotkey.Key2,
	"3":      hotkey.Key3,
	"4":      hotkey.Key4,
	"5":      hotkey.Key5,
	"6":      hotkey.Key6,
	"7":      hotkey.Key7,
	"8":      hotkey.Key8,
	"9":      hotkey.Key9,
	"ESCAPE": hotkey.KeyEscape,
	"RETURN": hotkey.KeyReturn,
	"TAB":    hotkey.KeyTab,
}

// ParseKey converts a key name such as "S" or "Space" (case-insensitive) to a key code
func ParseKey(name string) (hotkey.Key, error) {
	// NBSP normalisation: some IMEs report the space key as U+00A0
	if name == " " || name == "\u00a0" {
		name = "Space"
	}

	if key, ok := keyMap[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return key, nil
	}
	return 0, fmt.Errorf("unknown key: %q", name)
}

// ParseModifiers converts modifier names to modifiers. "ctrl" and "shift" work
// everywhere; other names depend on the platform (see platformModifiers).
func ParseModifiers(names []string) ([]hotkey.Modifier, error) {
	mods := make([]hotkey.Modifier, 0, len(names))
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		switch normalized {
		case "ctrl", "control":
			mods = append(mods, hotkey.ModCtrl)
		case "shift":
			mods = append(mods, hotkey.ModShift)
		default:
			mod, ok := platformModifiers[normalized]
			if !ok {
				return nil, fmt.Errorf("unsupported modifier on this platform: %q", name)
			}
			mods = append(mods, mod)
		}
	}
	return mods, nil
}

// ParseConfig builds a Config from modifier and key names
func ParseConfig(modifiers []string, key string) (Config, error) {
	mods, err := ParseModifiers(modifiers)
	if err != nil {
		return Config{}, err
	}
	k, err := ParseKey(key)
	if err != nil {
		return Config{}, err
	}
	return Config{Modifiers: mods, Key: k}, nil
}

// FormatHotkey formats modifier and key names for display, e.g. "Ctrl+Shift+S"
func FormatHotkey(modifiers []string, key string) string {
	parts := make([]string, 0, len(modifiers)+1)
	for _, m := range modifiers {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(m[:1])+strings.ToLower(m[1:]))
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}
