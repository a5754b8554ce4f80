package ranking

import "github.com/okian/brokengap/internal/domain/screening"

// BestPerSpaceGroup returns the first candidate of each space group in a
// ranked list, groups in order of first appearance.
func BestPerSpaceGroup(ranked []screening.Candidate) []screening.Candidate {
	seen := make(map[int]struct{})
	var out []screening.Candidate
	for _, c := range ranked {
		if _, ok := seen[c.SpgNum]; ok {
			continue
		}
		seen[c.SpgNum] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Group returns up to n ranked candidates of space group spg, in rank order.
// n <= 0 returns all of them.
func Group(ranked []screening.Candidate, spg, n int) []screening.Candidate {
	var out []screening.Candidate
	for _, c := range ranked {
		if c.SpgNum != spg {
			continue
		}
		out = append(out, c)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}
