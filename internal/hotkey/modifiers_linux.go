//go:build hotkey

package hotkey

import "golang.design/x/hotkey"

// X11 maps Alt to Mod1 and Super to Mod4 on common layouts
var platformModifiers = map[string]hotkey.Modifier{
	"alt":   hotkey.Mod1,
	"super": hotkey.Mod4,
}
