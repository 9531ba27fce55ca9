//go:build !linux || hotkey

package app

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/yok-tottii/EzS2ST/internal/config"
	"github.com/yok-tottii/EzS2ST/internal/hotkey"
	"github.com/yok-tottii/EzS2ST/internal/recording"
)

// newHotkeyTrigger registers the global stop hotkey for the lifetime of the
// app. It returns nil when the configured hotkey cannot be parsed; a hotkey
// that fails to register leaves Enter as the only trigger.
func newHotkeyTrigger(hk config.HotkeyConfig, lc fx.Lifecycle, log *zap.Logger) recording.StopTrigger {
	hkConfig, err := hotkey.ParseConfig(hk.Modifiers, hk.Key)
	if err != nil {
		log.Warn("Invalid stop hotkey, using Enter only", zap.Error(err))
		return nil
	}

	display := hotkey.FormatHotkey(hk.Modifiers, hk.Key)
	for _, c := range hotkey.CheckConflicts(hkConfig.Modifiers, hkConfig.Key) {
		log.Warn("Stop hotkey shadows a terminal key",
			zap.String("hotkey", display),
			zap.String("conflict", c.Name),
			zap.String("description", c.Description))
	}

	manager := hotkey.New()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := manager.Register(hkConfig); err != nil {
				log.Warn("Failed to register stop hotkey, using Enter only", zap.String("hotkey", display), zap.Error(err))
				return nil
			}
			log.Info("Stop hotkey registered", zap.String("hotkey", display))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := manager.Close(); err != nil {
				log.Warn("Failed to unregister stop hotkey", zap.Error(err))
			}
			return nil
		},
	})

	return recording.NewHotkeyTrigger(manager)
}
