package logging

import (
	"fmt"
	"os"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/mgutz/ansi"
	logxi "github.com/mgutz/logxi/v1"

	"github.com/corvid-labs/btsdp"
)

// PrettyLogger is a human-facing console logger: logxi supplies the
// leveled writer, mgutz/ansi colors the level tag, and
// mattn/go-isatty/mattn/go-colorable decide whether the destination
// terminal can take ANSI color at all (colorable additionally makes
// that safe on Windows consoles).
type PrettyLogger struct {
	lx      logxi.Logger
	colored bool
	fields  map[string]interface{}
}

// NewPrettyLogger builds a PrettyLogger named name, writing to stdout.
func NewPrettyLogger(name string) *PrettyLogger {
	colored := isatty.IsTerminal(os.Stdout.Fd())
	if colored {
		logxi.Output = colorable.NewColorableStdout()
	}
	return &PrettyLogger{lx: logxi.New(name), colored: colored}
}

func (p *PrettyLogger) tag(color, level string) string {
	if !p.colored {
		return "[" + level + "]"
	}
	return ansi.Color("["+level+"]", color)
}

func (p *PrettyLogger) kvs() []interface{} {
	out := make([]interface{}, 0, len(p.fields)*2)
	for k, v := range p.fields {
		out = append(out, k, v)
	}
	return out
}

func (p *PrettyLogger) Debugf(format string, args ...interface{}) {
	p.lx.Debug(p.tag("cyan", "DBG")+" "+fmt.Sprintf(format, args...), p.kvs()...)
}
func (p *PrettyLogger) Infof(format string, args ...interface{}) {
	p.lx.Info(p.tag("green", "INF")+" "+fmt.Sprintf(format, args...), p.kvs()...)
}
func (p *PrettyLogger) Warnf(format string, args ...interface{}) {
	p.lx.Warn(p.tag("yellow", "WRN")+" "+fmt.Sprintf(format, args...), p.kvs()...)
}
func (p *PrettyLogger) Errorf(format string, args ...interface{}) {
	p.lx.Error(p.tag("red", "ERR")+" "+fmt.Sprintf(format, args...), p.kvs()...)
}

func (p *PrettyLogger) Debug(args ...interface{}) { p.Debugf("%s", fmt.Sprint(args...)) }
func (p *PrettyLogger) Info(args ...interface{})  { p.Infof("%s", fmt.Sprint(args...)) }
func (p *PrettyLogger) Warn(args ...interface{})  { p.Warnf("%s", fmt.Sprint(args...)) }
func (p *PrettyLogger) Error(args ...interface{}) { p.Errorf("%s", fmt.Sprint(args...)) }

func (p *PrettyLogger) ChildLogger(fields map[string]interface{}) btsdp.Logger {
	merged := make(map[string]interface{}, len(p.fields)+len(fields))
	for k, v := range p.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &PrettyLogger{lx: p.lx, colored: p.colored, fields: merged}
}
