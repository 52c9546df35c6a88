package textnorm

// Blend weights of Similarity.
const (
	distanceWeight  = 0.6
	alignmentWeight = 0.4
)

// minScoredLength is the shortest normalized length that gets a fuzzy
// score. Shorter strings only match exactly.
const minScoredLength = 3

// jaroWinkler tuning.
const (
	maxPrefix   = 4
	prefixScale = 0.1
)

// Scorer computes similarity scores.
type Scorer struct {
	// MaxDistance is the edit distance at or below which the score is
	// boosted.
	MaxDistance int
	// Boost multiplies near matches. Values at or below 1 disable it.
	Boost float64
}

// DefaultScorer is the scorer used by Similarity.
var DefaultScorer = Scorer{MaxDistance: 3, Boost: 1.2}

// Similarity scores a and b with DefaultScorer.
func Similarity(a, b string) float64 {
	return DefaultScorer.Similarity(a, b)
}

// Similarity returns a score in [0,1]. Both inputs are normalized first.
// Identical strings score 1; strings shorter than three runes score 0
// unless identical. The result does not depend on argument order.
func (s Scorer) Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == nb {
		return 1
	}
	if na > nb {
		na, nb = nb, na
	}

	la, lb := runeLen(na), runeLen(nb)
	if la < minScoredLength || lb < minScoredLength {
		return 0
	}

	d := Distance(na, nb)
	score := distanceWeight*(1-float64(d)/float64(max(la, lb))) + alignmentWeight*JaroWinkler(na, nb)
	if d <= s.MaxDistance && s.Boost > 1 {
		score = min(score*s.Boost, 1)
	}
	return score
}

// Distance returns the Levenshtein distance between a and b counted in
// runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// JaroWinkler returns the Jaro-Winkler similarity of a and b: characters
// match within a window of half the longer length, transpositions are
// penalized and a common prefix of up to four runes is rewarded.
func JaroWinkler(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	window := max(max(len(ra), len(rb))/2-1, 0)
	matchedA := make([]bool, len(ra))
	matchedB := make([]bool, len(rb))

	matches := 0
	for i := range ra {
		lo := max(0, i-window)
		hi := min(len(rb)-1, i+window)
		for j := lo; j <= hi; j++ {
			if matchedB[j] || ra[i] != rb[j] {
				continue
			}
			matchedA[i], matchedB[j] = true, true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range ra {
		if !matchedA[i] {
			continue
		}
		for !matchedB[k] {
			k++
		}
		if ra[i] != rb[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	jaro := (m/float64(len(ra)) + m/float64(len(rb)) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < min(len(ra), len(rb), maxPrefix); i++ {
		if ra[i] != rb[i] {
			break
		}
		prefix++
	}
	return jaro + float64(prefix)*prefixScale*(1-jaro)
}
