// Package watersort implements the water-sort puzzle: tubes are stacks of
// colored tokens, a pour moves a contiguous same-colored run between
// tubes, and the puzzle is solved when every tube is empty or uniformly
// full.
package watersort

import "math/rand"

// Capacity is the fixed tube size.
const Capacity = 4

// State is a set of tubes; the last element of a tube is its top token.
type State [][]int

// Move is one pour from tube From onto tube To.
type Move struct {
	From int
	To   int
}

// Clone deep-copies the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for i, tube := range s {
		out[i] = append([]int(nil), tube...)
	}
	return out
}

// PourAmount computes how many tokens may legally move from tube i to
// tube j: zero when the tubes are the same, the source is empty, the
// destination is full, or a non-empty destination's top color differs from
// the source's top color. Otherwise the contiguous same-colored run on top
// of the source, capped by the destination's free space.
func PourAmount(s State, i, j int) int {
	if i == j || i < 0 || j < 0 || i >= len(s) || j >= len(s) {
		return 0
	}
	src, dst := s[i], s[j]
	if len(src) == 0 || len(dst) >= Capacity {
		return 0
	}

	top := src[len(src)-1]
	if len(dst) > 0 && dst[len(dst)-1] != top {
		return 0
	}

	run := 0
	for k := len(src) - 1; k >= 0 && src[k] == top; k-- {
		run++
	}
	if space := Capacity - len(dst); run > space {
		run = space
	}
	return run
}

// DoPour applies the pour on a clone and returns it along with the number
// of tokens moved. An illegal pour returns the original state and 0.
func DoPour(s State, i, j int) (State, int) {
	n := PourAmount(s, i, j)
	if n == 0 {
		return s, 0
	}

	out := s.Clone()
	src := out[i]
	moved := src[len(src)-n:]
	out[i] = src[:len(src)-n]
	out[j] = append(out[j], moved...)
	return out, n
}

// IsSolved reports whether every tube is empty or full of one color.
func IsSolved(s State) bool {
	for _, tube := range s {
		if len(tube) == 0 {
			continue
		}
		if len(tube) != Capacity {
			return false
		}
		for _, c := range tube {
			if c != tube[0] {
				return false
			}
		}
	}
	return true
}

// Generate builds a puzzle with the given number of colors plus two empty
// tubes. It starts from the solved state and applies shuffleMoves random
// legal pours, rejecting the move that would immediately undo the previous
// one, so every generated level is solvable by construction.
func Generate(colors, shuffleMoves int, rng *rand.Rand) State {
	s := make(State, colors+2)
	for c := 0; c < colors; c++ {
		tube := make([]int, Capacity)
		for k := range tube {
			tube[k] = c
		}
		s[c] = tube
	}
	for c := colors; c < colors+2; c++ {
		s[c] = []int{}
	}

	prev := Move{From: -1, To: -1}
	misses := 0
	for applied := 0; applied < shuffleMoves; {
		// A stuck position only arises when the sole legal pour is the
		// immediate reverse; after enough misses allow it.
		if misses > 200 {
			prev = Move{From: -1, To: -1}
			misses = 0
		}
		i := rng.Intn(len(s))
		j := rng.Intn(len(s))
		if i == prev.To && j == prev.From {
			misses++
			continue
		}
		next, n := DoPour(s, i, j)
		if n == 0 {
			misses++
			continue
		}
		s = next
		prev = Move{From: i, To: j}
		misses = 0
		applied++
	}
	return s
}
