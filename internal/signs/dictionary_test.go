package signs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLookupCaseInsensitive(t *testing.T) {
	d := Default()

	tests := []struct {
		word   string
		wantOK bool
	}{
		{"apple", true},
		{"Apple", true},
		{"APPLE", true},
		{"He", true},
		{"apples", false},
		{"app", false},
		{" apple", false},
		{"", false},
		{"she", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			loc, ok := d.Lookup(tt.word)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.word, ok, tt.wantOK)
			}
			if ok && loc == "" {
				t.Errorf("Lookup(%q) returned empty locator", tt.word)
			}
			if !ok && loc != "" {
				t.Errorf("Lookup(%q) = %q, want empty locator on miss", tt.word, loc)
			}
		})
	}
}

func TestDefaultDictionary(t *testing.T) {
	d := Default()
	if d.Len() != 4 {
		t.Errorf("Len() = %d, want 4", d.Len())
	}

	want := []string{"apple", "happy", "he", "want"}
	got := d.Words()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Words() = %v, want %v", got, want)
	}

	loc, _ := d.Lookup("apple")
	if loc != "https://drive.google.com/uc?export=download&id=17kTTMK5vkL1avoCssvTHsDxvkQov6zv_" {
		t.Errorf("apple locator = %q", loc)
	}
}

func TestNewDictionaryNormalizesKeys(t *testing.T) {
	d := NewDictionary(map[string]string{
		"  Hello ": "/clips/hello.mp4",
		"":         "/clips/empty.mp4",
		"skip":     "",
	})
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
	if loc, ok := d.Lookup("hello"); !ok || loc != "/clips/hello.mp4" {
		t.Errorf("Lookup(hello) = %q, %v", loc, ok)
	}
}

func TestDriveLink(t *testing.T) {
	got := DriveLink("abc123")
	want := "https://drive.google.com/uc?export=download&id=abc123"
	if got != want {
		t.Errorf("DriveLink() = %q, want %q", got, want)
	}
}

func TestLoadDictionary(t *testing.T) {
	content := `
words:
  Hello: /srv/signs/hello.mp4
  doctor: drive:XYZ
  pain: https://example.com/pain.mp4
`
	path := filepath.Join(t.TempDir(), "words.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("Len() = %d, want 3", d.Len())
	}
	if loc, _ := d.Lookup("HELLO"); loc != "/srv/signs/hello.mp4" {
		t.Errorf("hello = %q", loc)
	}
	if loc, _ := d.Lookup("doctor"); loc != DriveLink("XYZ") {
		t.Errorf("doctor = %q, want drive link", loc)
	}
	if loc, _ := d.Lookup("pain"); loc != "https://example.com/pain.mp4" {
		t.Errorf("pain = %q", loc)
	}
}

func TestLoadDictionaryLandmarks(t *testing.T) {
	content := `
words:
  Apple: drive:VIDEO
  he: /srv/signs/he.mp4
landmarks:
  apple: drive:LANDMARKS
`
	path := filepath.Join(t.TempDir(), "words.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	got := d.Landmarks()
	if len(got) != 1 {
		t.Fatalf("Landmarks() = %v, want one entry", got)
	}
	if got[DriveLink("VIDEO")] != DriveLink("LANDMARKS") {
		t.Errorf("Landmarks()[apple video] = %q, want %q", got[DriveLink("VIDEO")], DriveLink("LANDMARKS"))
	}

	if n := len(Default().Landmarks()); n != 0 {
		t.Errorf("Default().Landmarks() has %d entries, want 0", n)
	}
}

func TestLoadDictionaryLandmarksForUnmappedWord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	content := "words:\n  he: /srv/he.mp4\nlandmarks:\n  she: /srv/she.json\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDictionary(path); err == nil {
		t.Error("LoadDictionary() should reject landmarks for a word without a clip")
	}
}

func TestLoadDictionaryErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadDictionary(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadDictionary() should fail for a missing file")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("words: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDictionary(empty); err == nil {
		t.Error("LoadDictionary() should fail for a dictionary without words")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("words: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDictionary(bad); err == nil {
		t.Error("LoadDictionary() should fail for invalid YAML")
	}
}
