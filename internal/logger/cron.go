package logger

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// cronLogger adapts a Logger to cron.Logger. Routine scheduler chatter is
// logged at debug level.
type cronLogger struct {
	log Logger
}

// Cron returns l as a cron.Logger for use with cron.WithLogger and cron.Recover.
func Cron(l Logger) cron.Logger {
	return cronLogger{log: l}
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.With(pairs(keysAndValues)).Debug("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.With(pairs(keysAndValues)).Error(err, "cron: "+msg)
}

// pairs turns alternating keys and values into fields. A trailing key without
// a value is dropped.
func pairs(keysAndValues []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return out
}
