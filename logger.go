package sdp

// Logger is the logging collaborator threaded through the engine, the
// l2cap channels and the CLI. It mirrors the logging surface the
// teacher library threads through its ATT/GATT clients.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	Debug(args ...interface{})
	Info(args ...interface{})
	Warn(args ...interface{})
	Error(args ...interface{})

	// ChildLogger returns a Logger that prefixes or tags every record
	// with the given fields, without mutating the receiver.
	ChildLogger(fields map[string]interface{}) Logger
}

// NopLogger discards everything. Useful as a default when the caller
// does not supply one.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Debug(...interface{})          {}
func (NopLogger) Info(...interface{})           {}
func (NopLogger) Warn(...interface{})           {}
func (NopLogger) Error(...interface{})          {}
func (NopLogger) ChildLogger(map[string]interface{}) Logger {
	return NopLogger{}
}
