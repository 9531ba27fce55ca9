package logger

import (
	"strings"

	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// FxLogger routes fx lifecycle events into zap at debug level, errors at error level.
type FxLogger struct {
	logger *zap.SugaredLogger
}

// NewFxLogger creates an fxevent.Logger backed by logger
func NewFxLogger(logger *zap.Logger) fxevent.Logger {
	return &FxLogger{logger: logger.Sugar()}
}

// LogEvent implements fxevent.Logger
func (l *FxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		l.logResult("HOOK OnStart", e.CallerName, e.Err)
	case *fxevent.OnStopExecuted:
		l.logResult("HOOK OnStop", e.CallerName, e.Err)
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.Errorf("PROVIDE failed: %s, error: %v", strings.Join(e.OutputTypeNames, ", "), e.Err)
		} else {
			l.logger.Debugf("PROVIDE: %s", strings.Join(e.OutputTypeNames, ", "))
		}
	case *fxevent.Invoked:
		l.logResult("INVOKE", e.FunctionName, e.Err)
	case *fxevent.Stopping:
		l.logger.Infof("STOPPING: %s", e.Signal)
	case *fxevent.Started:
		l.logResult("STARTED", "", e.Err)
	case *fxevent.Stopped:
		l.logResult("STOPPED", "", e.Err)
	case *fxevent.RollingBack:
		l.logger.Errorf("ROLLING BACK: %v", e.StartErr)
	default:
		l.logger.Debugf("fx event: %T", event)
	}
}

func (l *FxLogger) logResult(action, name string, err error) {
	if err != nil {
		l.logger.Errorf("%s failed: %s, error: %v", action, name, err)
		return
	}
	l.logger.Debugf("%s: %s", action, name)
}
