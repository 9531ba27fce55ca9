package hotkey

import "golang.design/x/hotkey"

var platformModifiers = map[string]hotkey.Modifier{
	"alt": hotkey.ModAlt,
	"win": hotkey.ModWin,
}
