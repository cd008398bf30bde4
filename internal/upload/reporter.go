package upload

import (
	"io"

	"github.com/fatih/color"
)

// Reporter receives the user facing output of an upload.
type Reporter interface {
	Info(text string)
	Success(text string)
	Error(text string)
}

// ConsoleReporter prints success lines in green and errors in red.
type ConsoleReporter struct {
	out  io.Writer
	ok   *color.Color
	fail *color.Color
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:  out,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
	}
}

func (r *ConsoleReporter) Info(text string) {
	io.WriteString(r.out, text+"\n")
}

func (r *ConsoleReporter) Success(text string) {
	r.ok.Fprintln(r.out, text)
}

func (r *ConsoleReporter) Error(text string) {
	r.fail.Fprintln(r.out, text)
}
