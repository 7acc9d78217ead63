package watersort

import (
	"sort"
	"strconv"
	"strings"
)

// Solve searches for a pour sequence reaching a solved state, visiting at
// most maxStates positions. It returns the moves and whether a solution
// was found within the budget. Tube order is canonicalized when memoizing,
// so permuted positions are not revisited.
func Solve(s State, maxStates int) ([]Move, bool) {
	visited := make(map[string]struct{}, maxStates)
	var moves []Move

	var dfs func(cur State) bool
	dfs = func(cur State) bool {
		if IsSolved(cur) {
			return true
		}
		if len(visited) >= maxStates {
			return false
		}
		key := canonicalKey(cur)
		if _, seen := visited[key]; seen {
			return false
		}
		visited[key] = struct{}{}

		for i := range cur {
			for j := range cur {
				if wastedPour(cur, i, j) {
					continue
				}
				next, n := DoPour(cur, i, j)
				if n == 0 {
					continue
				}
				moves = append(moves, Move{From: i, To: j})
				if dfs(next) {
					return true
				}
				moves = moves[:len(moves)-1]
			}
		}
		return false
	}

	if dfs(s) {
		return append([]Move(nil), moves...), true
	}
	return nil, false
}

// wastedPour prunes moves that cannot make progress: emptying a uniform
// tube into an empty tube, or splitting a run the destination cannot take
// whole when the source tube is single-colored and the destination empty.
func wastedPour(s State, i, j int) bool {
	if i == j || i >= len(s) || j >= len(s) {
		return false
	}
	src, dst := s[i], s[j]
	if len(src) == 0 || len(dst) != 0 {
		return false
	}
	// Pouring a uniform tube into an empty one just renames the tube.
	for _, c := range src {
		if c != src[0] {
			return false
		}
	}
	return true
}

func canonicalKey(s State) string {
	tubes := make([]string, len(s))
	for i, tube := range s {
		parts := make([]string, len(tube))
		for k, c := range tube {
			parts[k] = strconv.Itoa(c)
		}
		tubes[i] = strings.Join(parts, ",")
	}
	sort.Strings(tubes)
	return strings.Join(tubes, "|")
}
