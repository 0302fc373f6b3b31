// Package inject delivers transcripts: printed to a terminal, typed into the
// active application, or pasted through the clipboard.
package inject

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/go-vgo/robotgo"
)

// TextInjector delivers one transcript.
type TextInjector interface {
	Inject(text string) error
}

// New returns the injector for method: "print" writes to w, "type" and
// "paste" drive the active application.
func New(method string, w io.Writer) (TextInjector, error) {
	switch method {
	case "print", "":
		return NewPrinter(w), nil
	case "type", "paste":
		return NewInjector(method), nil
	default:
		return nil, fmt.Errorf("inject: unknown method %q (supported: print, type, paste)", method)
	}
}

// Printer writes each transcript on its own line.
type Printer struct {
	w io.Writer
}

var _ TextInjector = (*Printer)(nil)

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Inject prints "Transcription: <text>". Empty transcripts are printed too,
// so a silent recording is still visible.
func (p *Printer) Inject(text string) error {
	if _, err := fmt.Fprintf(p.w, "Transcription: %s\n", text); err != nil {
		return fmt.Errorf("inject: print: %w", err)
	}
	return nil
}

// Injector types or pastes text into the active application.
type Injector struct {
	method string // "type" or "paste"
}

var _ TextInjector = (*Injector)(nil)

// NewInjector creates an Injector with the given method.
func NewInjector(method string) *Injector {
	return &Injector{method: method}
}

// Inject sends text to the active application using the configured method.
func (inj *Injector) Inject(text string) error {
	if text == "" {
		return nil
	}

	switch inj.method {
	case "paste":
		return inj.paste(text)
	default:
		robotgo.Type(text)
		return nil
	}
}

// paste copies text to the clipboard and sends the platform paste shortcut.
// It overwrites the clipboard, restoring it afterwards on a best effort basis.
func (inj *Injector) paste(text string) error {
	prev, _ := robotgo.ReadAll()

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("inject: write to clipboard: %w", err)
	}
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("inject: key tap paste: %w", err)
	}

	_ = robotgo.WriteAll(prev)
	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// Func adapts a function to TextInjector.
type Func func(text string) error

// Inject calls f.
func (f Func) Inject(text string) error { return f(text) }

// Multi delivers each transcript to every injector in order and joins
// their errors.
type Multi []TextInjector

// Inject calls every injector, even after a failure.
func (m Multi) Inject(text string) error {
	var errs []error
	for _, inj := range m {
		if err := inj.Inject(text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
