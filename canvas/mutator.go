package canvas

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// ErrArityMismatch is returned when a mutation supplies a different
// number of contents and positions. The mutation is not applied at all.
var ErrArityMismatch = errors.New("the number of contents and positions must match")

// InvalidPositionError reports an insert position that cannot be
// interpreted against the target sequence.
type InvalidPositionError struct {
	Position int
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid block position %d", e.Position)
}

// InsertAt inserts one new block per (content, position) pair into a
// copy of blocks and returns the result.
//
// Positions are interpreted against the original sequence: the pairs are
// applied in ascending position order (stable for ties), each insertion
// shifting later insertions right by one. A position past the end
// appends; a negative position fails with InvalidPositionError. The
// input slice is never modified.
func InsertAt(contents []string, positions []int, blocks []Block) ([]Block, error) {
	if len(contents) != len(positions) {
		return nil, ErrArityMismatch
	}
	for _, p := range positions {
		if p < 0 {
			return nil, &InvalidPositionError{Position: p}
		}
	}

	type insertion struct {
		position int
		block    Block
	}
	inserts := make([]insertion, len(contents))
	for i, content := range contents {
		inserts[i] = insertion{position: positions[i], block: NewBlock(content)}
	}
	sort.SliceStable(inserts, func(i, j int) bool {
		return inserts[i].position < inserts[j].position
	})

	out := make([]Block, len(blocks), len(blocks)+len(inserts))
	copy(out, blocks)
	for offset, ins := range inserts {
		at := ins.position + offset
		if at > len(out) {
			at = len(out)
		}
		out = append(out, Block{})
		copy(out[at+1:], out[at:])
		out[at] = ins.block
	}
	return out, nil
}

// ReplaceAt replaces the block at each position with a fresh block
// holding the paired content. When the same position is listed more than
// once the last pair wins. Positions outside [0, len(blocks)) are
// ignored; the sequence never changes length. The input slice is never
// modified.
func ReplaceAt(contents []string, positions []int, blocks []Block) ([]Block, error) {
	if len(contents) != len(positions) {
		return nil, ErrArityMismatch
	}

	replacements := make(map[int]Block, len(positions))
	for i, p := range positions {
		replacements[p] = NewBlock(contents[i])
	}

	out := make([]Block, len(blocks))
	for i, b := range blocks {
		if repl, ok := replacements[i]; ok {
			out[i] = repl
		} else {
			out[i] = b
		}
	}
	return out, nil
}
