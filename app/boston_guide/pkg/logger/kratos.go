package logger

import (
	"fmt"

	klog "github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

// kratosLogger 把 kratos 组件的日志转发到 Log
type kratosLogger struct{}

// Kratos 返回转发到 logrus 的 kratos Logger，低于 minLevel 的日志被丢弃
func Kratos(minLevel klog.Level) klog.Logger {
	return klog.NewFilter(kratosLogger{}, klog.FilterLevel(minLevel))
}

func (kratosLogger) Log(level klog.Level, keyvals ...any) error {
	var msg string
	fields := logrus.Fields{"component": "kratos"}
	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if key == klog.DefaultMessageKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields[key] = keyvals[i+1]
	}
	Log.WithFields(fields).Log(toLogrusLevel(level), msg)
	return nil
}

func toLogrusLevel(level klog.Level) logrus.Level {
	switch level {
	case klog.LevelDebug:
		return logrus.DebugLevel
	case klog.LevelInfo:
		return logrus.InfoLevel
	case klog.LevelWarn:
		return logrus.WarnLevel
	default:
		// Fatal 也只记录，不退出进程
		return logrus.ErrorLevel
	}
}
