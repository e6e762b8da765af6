package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditPlanValidateEmpty(t *testing.T) {
	plan := &EditPlan{}
	assert.ErrorIs(t, plan.Validate(), ErrNoOpEdit)

	plan = &EditPlan{Add: &BlockEdit{}, Replace: &BlockEdit{}}
	assert.ErrorIs(t, plan.Validate(), ErrNoOpEdit)
}

func TestEditPlanValidateArity(t *testing.T) {
	plan := &EditPlan{Add: &BlockEdit{Contents: []string{"x"}, Positions: []int{0, 1}}}
	assert.ErrorIs(t, plan.Validate(), ErrArityMismatch)

	plan = &EditPlan{Replace: &BlockEdit{Contents: []string{"x", "y"}, Positions: []int{0}}}
	assert.ErrorIs(t, plan.Validate(), ErrArityMismatch)
}

func TestEditPlanApplyAddOnly(t *testing.T) {
	blocks := makeBlocks("a", "b")
	plan := &EditPlan{Add: &BlockEdit{Contents: []string{"New block"}, Positions: []int{0}}}

	out, err := plan.Apply(blocks)
	require.NoError(t, err)
	assert.Equal(t, []string{"New block", "a", "b"}, Contents(out))
}

func TestEditPlanApplyInsertBeforeReplace(t *testing.T) {
	blocks := makeBlocks("a", "b", "c")
	plan := &EditPlan{
		Add:     &BlockEdit{Contents: []string{"x"}, Positions: []int{0}},
		Replace: &BlockEdit{Contents: []string{"z"}, Positions: []int{1}},
	}

	out, err := plan.Apply(blocks)
	require.NoError(t, err)

	// The replace position resolves against the post-insert sequence
	// [x, a, b, c]: index 1 is "a", not "b".
	assert.Equal(t, []string{"x", "z", "b", "c"}, Contents(out))
}

func TestEditPlanApplyNoOpLeavesCanvasUntouched(t *testing.T) {
	blocks := makeBlocks("a")
	plan := &EditPlan{}

	out, err := plan.Apply(blocks)
	assert.ErrorIs(t, err, ErrNoOpEdit)
	assert.Equal(t, blocks, out)
}

func TestEditPlanApplyFailureIsAtomic(t *testing.T) {
	blocks := makeBlocks("a", "b")
	plan := &EditPlan{
		Add:     &BlockEdit{Contents: []string{"x"}, Positions: []int{-2}},
		Replace: &BlockEdit{Contents: []string{"z"}, Positions: []int{0}},
	}

	out, err := plan.Apply(blocks)
	require.Error(t, err)
	assert.Equal(t, blocks, out)
}
