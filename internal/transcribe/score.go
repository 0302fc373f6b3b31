package transcribe

import (
	"fmt"
	"strings"
	"unicode"
)

// Score compares a transcript against a known reference sentence.
type Score struct {
	// Rate is the word error rate: edits divided by reference words.
	Rate          float64
	Substitutions int
	Insertions    int
	Deletions     int
	Words         int
}

func (s Score) String() string {
	return fmt.Sprintf("WER %.1f%% (%d substituted, %d inserted, %d deleted of %d words)",
		s.Rate*100, s.Substitutions, s.Insertions, s.Deletions, s.Words)
}

type edits struct {
	cost, subs, ins, dels int
}

func (e edits) plus(subs, ins, dels int) edits {
	return edits{e.cost + subs + ins + dels, e.subs + subs, e.ins + ins, e.dels + dels}
}

// Compare returns the word-level edit distance between reference and
// hypothesis. Case, punctuation and extra whitespace are ignored. An empty
// reference scores zero.
func Compare(reference, hypothesis string) Score {
	ref := scoreWords(reference)
	hyp := scoreWords(hypothesis)
	if len(ref) == 0 {
		return Score{}
	}

	// prev and cur are rows of the edit table; column j covers hyp[:j].
	prev := make([]edits, len(hyp)+1)
	cur := make([]edits, len(hyp)+1)
	for j := range prev {
		prev[j] = edits{}.plus(0, j, 0)
	}

	for i := 1; i <= len(ref); i++ {
		cur[0] = prev[0].plus(0, 0, 1)
		for j := 1; j <= len(hyp); j++ {
			var best edits
			if ref[i-1] == hyp[j-1] {
				best = prev[j-1]
			} else {
				best = prev[j-1].plus(1, 0, 0)
			}
			if del := prev[j].plus(0, 0, 1); del.cost < best.cost {
				best = del
			}
			if ins := cur[j-1].plus(0, 1, 0); ins.cost < best.cost {
				best = ins
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}

	e := prev[len(hyp)]
	return Score{
		Rate:          float64(e.cost) / float64(len(ref)),
		Substitutions: e.subs,
		Insertions:    e.ins,
		Deletions:     e.dels,
		Words:         len(ref),
	}
}

func scoreWords(s string) []string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Fields(s)
}
