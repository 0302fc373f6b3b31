package transcribe

import (
	"math"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		want       Score
	}{
		{
			name:       "identical",
			reference:  "he wants an apple",
			hypothesis: "he wants an apple",
			want:       Score{Words: 4},
		},
		{
			name:       "one substitution",
			reference:  "he wants an apple",
			hypothesis: "he want an apple",
			want:       Score{Rate: 0.25, Substitutions: 1, Words: 4},
		},
		{
			name:       "one insertion",
			reference:  "he is happy",
			hypothesis: "he is very happy",
			want:       Score{Rate: 1.0 / 3, Insertions: 1, Words: 3},
		},
		{
			name:       "one deletion",
			reference:  "he wants an apple",
			hypothesis: "he wants apple",
			want:       Score{Rate: 0.25, Deletions: 1, Words: 4},
		},
		{
			name:       "case and punctuation ignored",
			reference:  "He wants an apple.",
			hypothesis: "he WANTS an, apple",
			want:       Score{Words: 4},
		},
		{
			name:       "extra whitespace",
			reference:  "  he   is  happy ",
			hypothesis: "he is happy",
			want:       Score{Words: 3},
		},
		{
			name:       "empty reference",
			reference:  "",
			hypothesis: "some words",
			want:       Score{},
		},
		{
			name:       "empty hypothesis",
			reference:  "some words",
			hypothesis: "",
			want:       Score{Rate: 1, Deletions: 2, Words: 2},
		},
		{
			name:       "completely different",
			reference:  "he is happy",
			hypothesis: "she was sad",
			want:       Score{Rate: 1, Substitutions: 3, Words: 3},
		},
		{
			name:       "mixed errors",
			reference:  "the quick brown fox jumps over the lazy dog",
			hypothesis: "a quick brown cat jumps the lazy dog",
			want:       Score{Rate: 3.0 / 9, Substitutions: 2, Deletions: 1, Words: 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.reference, tt.hypothesis)
			if math.Abs(got.Rate-tt.want.Rate) > 1e-9 {
				t.Errorf("Rate = %f, want %f", got.Rate, tt.want.Rate)
			}
			got.Rate = tt.want.Rate
			if got != tt.want {
				t.Errorf("Compare() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScoreString(t *testing.T) {
	s := Score{Rate: 0.25, Substitutions: 1, Words: 4}
	want := "WER 25.0% (1 substituted, 0 inserted, 0 deleted of 4 words)"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
