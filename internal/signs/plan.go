package signs

import (
	"strings"
	"unicode"
)

// Step is one entry of a playback plan.
type Step struct {
	Word    string `json:"word"`
	Locator string `json:"locator,omitempty"`
	Mapped  bool   `json:"mapped"`
}

// Options control how a sentence is turned into steps.
type Options struct {
	// StripPunctuation removes commas and periods from tokens before lookup.
	StripPunctuation bool
	// Fingerspell expands an unmapped word into per-letter steps when every
	// letter has a clip.
	Fingerspell bool
}

// Tokenize splits a sentence on whitespace.
func Tokenize(sentence string) []string {
	return strings.Fields(sentence)
}

// Normalize drops commas and periods from a token.
func Normalize(token string) string {
	return strings.Map(func(r rune) rune {
		if r == ',' || r == '.' {
			return -1
		}
		return r
	}, token)
}

// Plan resolves each token of sentence against the dictionary, in order.
func (d *Dictionary) Plan(sentence string, opts Options) []Step {
	tokens := Tokenize(sentence)
	steps := make([]Step, 0, len(tokens))

	for _, tok := range tokens {
		word := tok
		if opts.StripPunctuation {
			word = Normalize(word)
			if word == "" {
				continue
			}
		}

		if loc, ok := d.Lookup(word); ok {
			steps = append(steps, Step{Word: word, Locator: loc, Mapped: true})
			continue
		}

		if opts.Fingerspell {
			if letters, ok := d.spell(word); ok {
				steps = append(steps, letters...)
				continue
			}
		}

		steps = append(steps, Step{Word: word})
	}
	return steps
}

// spell returns one step per letter, or false if any letter is unmapped.
func (d *Dictionary) spell(word string) ([]Step, bool) {
	var steps []Step
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return nil, false
		}
		letter := strings.ToUpper(string(r))
		loc, ok := d.Lookup(letter)
		if !ok {
			return nil, false
		}
		steps = append(steps, Step{Word: letter, Locator: loc, Mapped: true})
	}
	return steps, len(steps) > 0
}
