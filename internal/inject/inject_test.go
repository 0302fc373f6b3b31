package inject

import (
	"bytes"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		method  string
		want    string
		wantErr bool
	}{
		{method: "print", want: "*inject.Printer"},
		{method: "", want: "*inject.Printer"},
		{method: "type", want: "*inject.Injector"},
		{method: "paste", want: "*inject.Injector"},
		{method: "ble", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			inj, err := New(tt.method, &bytes.Buffer{})
			if tt.wantErr {
				if err == nil {
					t.Errorf("New(%q) should fail", tt.method)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.method, err)
			}
			switch inj.(type) {
			case *Printer:
				if tt.want != "*inject.Printer" {
					t.Errorf("New(%q) = Printer, want %s", tt.method, tt.want)
				}
			case *Injector:
				if tt.want != "*inject.Injector" {
					t.Errorf("New(%q) = Injector, want %s", tt.method, tt.want)
				}
			}
		})
	}
}

func TestPrinterInject(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	if err := p.Inject("he wants an apple"); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	if err := p.Inject(""); err != nil {
		t.Fatalf("Inject(\"\") error = %v", err)
	}

	want := "Transcription: he wants an apple\nTranscription: \n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrinterInjectWriteError(t *testing.T) {
	if err := NewPrinter(failingWriter{}).Inject("x"); err == nil {
		t.Error("Inject() should fail when the writer fails")
	}
}

func TestInjectorInjectEmpty(t *testing.T) {
	// Empty text returns before touching the desktop.
	if err := NewInjector("type").Inject(""); err != nil {
		t.Errorf("Inject(\"\") error = %v", err)
	}
}

func TestMulti(t *testing.T) {
	var got []string
	record := Func(func(text string) error {
		got = append(got, text)
		return nil
	})
	boom := errors.New("boom")
	fail := Func(func(string) error { return boom })

	m := Multi{record, fail, record}
	err := m.Inject("hi")
	if !errors.Is(err, boom) {
		t.Errorf("Inject() error = %v, want boom", err)
	}
	if len(got) != 2 {
		t.Errorf("delivered %d times, want 2 despite the failure", len(got))
	}

	if err := (Multi{}).Inject("hi"); err != nil {
		t.Errorf("empty Multi error = %v", err)
	}
}

func TestPasteModifier(t *testing.T) {
	if m := pasteModifier(); m != "cmd" && m != "ctrl" {
		t.Errorf("pasteModifier() = %q", m)
	}
}
