// Package signs maps words to sign-language video clips and plans the
// sequence of clips for a sentence.
package signs

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// driveLinkFormat is the direct-download form of a Google Drive file link.
const driveLinkFormat = "https://drive.google.com/uc?export=download&id=%s"

// drivePrefix marks a dictionary locator that is a bare Drive file ID.
const drivePrefix = "drive:"

// DriveLink returns the direct-download URL for a Google Drive file ID.
func DriveLink(fileID string) string {
	return fmt.Sprintf(driveLinkFormat, fileID)
}

// Dictionary maps lowercase words to video locators (URLs or local paths).
// It is not modified after construction and is safe for concurrent reads.
type Dictionary struct {
	entries map[string]string
	// landmarks maps a video locator to its landmark file locator.
	landmarks map[string]string
}

// NewDictionary builds a Dictionary. Keys are lowercased and trimmed;
// "drive:<id>" locators are expanded to download links.
func NewDictionary(words map[string]string) *Dictionary {
	entries := make(map[string]string, len(words))
	for w, loc := range words {
		key := strings.ToLower(strings.TrimSpace(w))
		if key == "" || loc == "" {
			continue
		}
		entries[key] = expandLocator(loc)
	}
	return &Dictionary{entries: entries}
}

// Default returns the built-in dictionary.
func Default() *Dictionary {
	return NewDictionary(map[string]string{
		"happy": drivePrefix + "1HUjFYbNx4TsGhwupRh6dZbS5ov8Urtte",
		"he":    drivePrefix + "1KtBgcJX4eR2cvnMRk0qBq2KqRfFG367h",
		"want":  drivePrefix + "1YAnh6odCU3a1OdyPboWiq98gfWNXwlBO",
		"apple": drivePrefix + "17kTTMK5vkL1avoCssvTHsDxvkQov6zv_",
	})
}

// dictionaryFile is the YAML layout read by LoadDictionary.
type dictionaryFile struct {
	Words     map[string]string `yaml:"words"`
	Landmarks map[string]string `yaml:"landmarks"`
}

// LoadDictionary reads a YAML file of the form:
//
//	words:
//	  apple: drive:17kTTMK5vkL1avoCssvTHsDxvkQov6zv_
//	  hello: /srv/signs/hello.mp4
//	landmarks:
//	  apple: https://example.org/isl/apple-landmarks.json
//
// landmarks is optional and names the precomputed landmark file of a
// word's clip, for hosts where it cannot be found next to the clip.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("signs: reading dictionary: %w", err)
	}

	var f dictionaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("signs: parsing dictionary: %w", err)
	}
	if len(f.Words) == 0 {
		return nil, fmt.Errorf("signs: dictionary %s has no words", path)
	}
	d := NewDictionary(f.Words)
	for w, loc := range f.Landmarks {
		video, ok := d.Lookup(strings.TrimSpace(w))
		if !ok || loc == "" {
			return nil, fmt.Errorf("signs: dictionary %s: landmarks for unmapped word %q", path, w)
		}
		if d.landmarks == nil {
			d.landmarks = make(map[string]string)
		}
		d.landmarks[video] = expandLocator(loc)
	}
	return d, nil
}

// Landmarks returns the landmark file locators given in the dictionary,
// keyed by video locator.
func (d *Dictionary) Landmarks() map[string]string {
	out := make(map[string]string, len(d.landmarks))
	for video, loc := range d.landmarks {
		out[video] = loc
	}
	return out
}

// Lookup returns the locator for word. Matching is exact after lowercasing.
func (d *Dictionary) Lookup(word string) (string, bool) {
	loc, ok := d.entries[strings.ToLower(word)]
	return loc, ok
}

// Len returns the number of mapped words.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Words returns the mapped words in sorted order.
func (d *Dictionary) Words() []string {
	words := make([]string, 0, len(d.entries))
	for w := range d.entries {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

func expandLocator(loc string) string {
	if id, ok := strings.CutPrefix(loc, drivePrefix); ok {
		return DriveLink(id)
	}
	return loc
}
