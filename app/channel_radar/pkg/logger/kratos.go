package logger

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/sirupsen/logrus"
)

// kratosLogger 把 kratos 的 key/value 日志转发到 logrus
type kratosLogger struct {
	entry func() *logrus.Logger
}

// NewKratosLogger 返回写入全局 Log 的 kratos 日志适配器
func NewKratosLogger() log.Logger {
	return &kratosLogger{entry: func() *logrus.Logger { return Log }}
}

func (l *kratosLogger) Log(level log.Level, keyvals ...any) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "KEYVALS UNPAIRED")
	}

	fields := logrus.Fields{}
	var msg string
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		switch key {
		case log.DefaultMessageKey:
			msg = fmt.Sprint(keyvals[i+1])
		case CallerKey:
			// kratos 的 caller 指向真实调用方，替换适配器自身的位置
			fields[CallerKey] = fmt.Sprint(keyvals[i+1])
		default:
			fields[key] = keyvals[i+1]
		}
	}

	entry := l.entry().WithFields(fields)
	switch level {
	case log.LevelDebug:
		entry.Debug(msg)
	case log.LevelWarn:
		entry.Warn(msg)
	case log.LevelError, log.LevelFatal:
		entry.Error(msg)
	default:
		entry.Info(msg)
	}
	return nil
}
