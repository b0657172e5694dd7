package ble

// Logger is the structured logging surface every package in this module
// takes as a constructor argument, rather than reaching for a global. The
// method set matches what the teacher's att/gatt clients already call:
// Debugf/Errorf for formatted messages, Debug/Info/Error for plain ones,
// and ChildLogger to bind contextual fields (peer address, bearer id) onto
// every subsequent line without threading them through every call site.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	// ChildLogger returns a Logger that logs the same way but with fields
	// merged into every entry.
	ChildLogger(fields map[string]interface{}) Logger
}

// NopLogger discards everything. Useful as a default and in tests.
type NopLogger struct{}

func (NopLogger) Debug(args ...interface{})                 {}
func (NopLogger) Debugf(format string, args ...interface{}) {}
func (NopLogger) Info(args ...interface{})                  {}
func (NopLogger) Infof(format string, args ...interface{})  {}
func (NopLogger) Error(args ...interface{})                 {}
func (NopLogger) Errorf(format string, args ...interface{}) {}
func (l NopLogger) ChildLogger(map[string]interface{}) Logger { return l }
