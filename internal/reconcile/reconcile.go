package reconcile

import (
	"strings"
	"unicode"
)

// Unmatched marks a requested id no strategy could pair up.
const Unmatched = -1

// Match pairs each requested id with at most one received id. Requested ids
// are processed in submission order; strategies run as a cascade (exact,
// number prefix, key phrase, fuzzy) and the first hit wins. A received id
// consumed by an earlier requested id is never reused.
//
// The returned slice has one entry per requested id: the index into received,
// or Unmatched.
func Match(requested, received []string) []int {
	pairs := make([]int, len(requested))
	used := make([]bool, len(received))

	strategies := []func(string, string) bool{
		exactMatch,
		numberPrefixMatch,
		keyPhraseMatch,
		fuzzyMatch,
	}

	for i, req := range requested {
		pairs[i] = Unmatched
		for _, strategy := range strategies {
			for j, rec := range received {
				if used[j] {
					continue
				}
				if strategy(req, rec) {
					pairs[i] = j
					used[j] = true
					break
				}
			}
			if pairs[i] != Unmatched {
				break
			}
		}
	}
	return pairs
}

func exactMatch(requested, received string) bool {
	return requested == received
}

// numberPrefixMatch pairs ids that share a leading section number, covering
// oracles that echo "28" for "28 Other rules on contract formation".
func numberPrefixMatch(requested, received string) bool {
	reqNum := leadingInteger(requested)
	recNum := leadingInteger(received)
	if reqNum != "" && recNum != "" && trimZeros(reqNum) == trimZeros(recNum) {
		return true
	}
	if received != "" && isAllDigits(received) && strings.HasPrefix(requested, received+" ") {
		return true
	}
	return false
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true,
	"that": true, "this": true, "are": true, "not": true,
	"its": true, "was": true, "has": true, "have": true,
}

// keyPhraseMatch compares the meaningful words of each id. At least half of
// the requested id's key words (never fewer than two) must find a partner in
// the received id, where a partner is a substring hit in either direction or
// a word within edit distance one.
func keyPhraseMatch(requested, received string) bool {
	reqWords := keyWords(requested)
	recWords := keyWords(received)
	if len(reqWords) == 0 || len(recWords) == 0 {
		return false
	}

	matched := 0
	for _, rw := range reqWords {
		for _, cw := range recWords {
			if wordsOverlap(rw, cw) {
				matched++
				break
			}
		}
	}
	return matched >= 2 && matched*2 >= len(reqWords)
}

func wordsOverlap(a, b string) bool {
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	return levenshtein(a, b) <= 1
}

// fuzzyMatch is the last resort: alphanumeric normalisation followed by
// containment or, for short ids, Levenshtein similarity.
func fuzzyMatch(requested, received string) bool {
	req := alphanumeric(requested)
	rec := alphanumeric(received)
	if req == "" || rec == "" {
		return false
	}

	shorter, longer := req, rec
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 5 && strings.Contains(longer, shorter) {
		return true
	}
	if len(req) <= 20 && len(rec) <= 20 && similarity(req, rec) >= 0.70 {
		return true
	}
	return false
}

// keyWords tokenises an id into lowercase words longer than two characters,
// stop words excluded.
func keyWords(id string) []string {
	fields := strings.FieldsFunc(strings.ToLower(id), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var words []string
	for _, f := range fields {
		if len(f) > 2 && !stopWords[f] {
			words = append(words, f)
		}
	}
	return words
}

func leadingInteger(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func trimZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
