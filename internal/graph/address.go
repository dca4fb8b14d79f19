package graph

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrAddressNotFound is returned when no intersection matches a query.
var ErrAddressNotFound = errors.New("address not found")

// normalize folds case and accents and collapses punctuation to spaces, so
// "Av. Perú 1020" and "av peru 1020" compare equal.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// MinAddressScore is the lowest similarity score FindAddress accepts.
const MinAddressScore = 90

// houseNumberBoost is added when the query's house number appears in the
// candidate.
const houseNumberBoost = 30

var houseNumberRE = regexp.MustCompile(`\d+`)

// ratio is the normalised edit similarity of a and b in [0, 100].
func ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// partialRatio is the best ratio of the shorter string against every
// same-length window of the longer one.
func partialRatio(a, b string) float64 {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 || len(short) == len(long) {
		return ratio(a, b)
	}
	s := string(short)
	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(s, string(long[i:i+len(short)])); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenSortRatio compares a and b with their words sorted.
func tokenSortRatio(a, b string) float64 {
	sortWords := func(s string) string {
		words := strings.Fields(s)
		slices.Sort(words)
		return strings.Join(words, " ")
	}
	return ratio(sortWords(a), sortWords(b))
}

// addressScore rates a normalised candidate against a normalised query: the
// best of the plain, partial and word-order-insensitive similarities, plus
// houseNumberBoost when the query's house number is one of the candidate's
// words.
func addressScore(query, candidate string) float64 {
	score := max(ratio(query, candidate), partialRatio(query, candidate), tokenSortRatio(query, candidate))
	if number := houseNumberRE.FindString(query); number != "" && slices.Contains(strings.Fields(candidate), number) {
		score += houseNumberBoost
	}
	return score
}

// FindAddress resolves a free-text address to an intersection. An exact
// match after normalisation wins; otherwise the best scoring intersection
// at or above MinAddressScore, ties going to the earliest.
func (g *Graph) FindAddress(query string) (Intersection, error) {
	q := normalize(query)
	if q == "" {
		return Intersection{}, fmt.Errorf("%w: empty query", ErrAddressNotFound)
	}

	var (
		best      Intersection
		bestScore float64
	)
	for _, n := range g.intersections {
		cand := normalize(n.Address)
		if cand == q {
			return n, nil
		}
		if s := addressScore(q, cand); s > bestScore {
			best, bestScore = n, s
		}
	}
	if bestScore < MinAddressScore {
		return Intersection{}, fmt.Errorf("%w: %q", ErrAddressNotFound, query)
	}
	return best, nil
}
