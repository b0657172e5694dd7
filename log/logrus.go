// Package log implements ble.Logger on top of github.com/sirupsen/logrus,
// the teacher's production logging backend (linux/device.go and the att/gatt
// clients are built against exactly this Debugf/Errorf/ChildLogger shape).
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/leso-kn/ble"
)

// Logrus adapts a *logrus.Entry to ble.Logger.
type Logrus struct {
	entry *logrus.Entry
}

// New wraps logger (or logrus.StandardLogger() if nil) as a ble.Logger.
func New(logger *logrus.Logger) *Logrus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Logrus{entry: logrus.NewEntry(logger)}
}

func (l *Logrus) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *Logrus) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logrus) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *Logrus) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logrus) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *Logrus) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// ChildLogger returns a Logrus logging with fields merged into every entry,
// matching the teacher's l.ChildLogger(map[string]interface{}) calls.
func (l *Logrus) ChildLogger(fields map[string]interface{}) ble.Logger {
	return &Logrus{entry: l.entry.WithFields(logrus.Fields(fields))}
}
