package canvas

import (
	"github.com/pkg/errors"
)

// ErrNoOpEdit is returned when an edit plan carries no usable mutation.
// The canvas is left untouched and the condition surfaces to the caller
// instead of silently no-opping.
var ErrNoOpEdit = errors.New("edit plan contains no blocks to add or replace")

// BlockEdit is one side of an edit plan: equal-length content and
// position vectors.
type BlockEdit struct {
	Contents  []string `json:"contents"`
	Positions []int    `json:"positions"`
}

func (e *BlockEdit) empty() bool {
	return e == nil || (len(e.Contents) == 0 && len(e.Positions) == 0)
}

// EditPlan is the structured canvas mutation produced by the edit
// planner: an optional set of insertions and an optional set of
// replacements.
type EditPlan struct {
	Add     *BlockEdit `json:"addBlocks,omitempty"`
	Replace *BlockEdit `json:"replaceBlocks,omitempty"`
}

// Validate checks the plan shape before any mutation is attempted.
func (p *EditPlan) Validate() error {
	if p.Add.empty() && p.Replace.empty() {
		return ErrNoOpEdit
	}
	if p.Add != nil && !p.Add.empty() && len(p.Add.Contents) != len(p.Add.Positions) {
		return errors.Wrap(ErrArityMismatch, "addBlocks")
	}
	if p.Replace != nil && !p.Replace.empty() && len(p.Replace.Contents) != len(p.Replace.Positions) {
		return errors.Wrap(ErrArityMismatch, "replaceBlocks")
	}
	return nil
}

// Apply runs the plan against blocks and returns the mutated sequence.
//
// Insertions always run before replacements: replacement positions are
// defined against the sequence after insertion. On any failure the
// original sequence is returned unchanged alongside the error; a plan is
// never partially applied.
func (p *EditPlan) Apply(blocks []Block) ([]Block, error) {
	if err := p.Validate(); err != nil {
		return blocks, err
	}

	out := blocks
	if !p.Add.empty() {
		inserted, err := InsertAt(p.Add.Contents, p.Add.Positions, out)
		if err != nil {
			return blocks, errors.Wrap(err, "apply addBlocks")
		}
		out = inserted
	}
	if !p.Replace.empty() {
		replaced, err := ReplaceAt(p.Replace.Contents, p.Replace.Positions, out)
		if err != nil {
			return blocks, errors.Wrap(err, "apply replaceBlocks")
		}
		out = replaced
	}
	return out, nil
}
