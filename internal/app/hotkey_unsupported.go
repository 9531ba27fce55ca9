//go:build linux && !hotkey

package app

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/config"
	"github.com/yok-tottii/EzS2ST/internal/recording"
)

// newHotkeyTrigger is unavailable in this build. The X11 hotkey backend
// aborts the process at startup without a display, so it is only linked
// with -tags hotkey.
func newHotkeyTrigger(hk config.HotkeyConfig, lc fx.Lifecycle, log *zap.Logger) recording.StopTrigger {
	log.Warn("Stop hotkey is not supported by this build, using Enter only; rebuild with -tags hotkey")
	return nil
}
