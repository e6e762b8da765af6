// Package canvas implements the collaborative canvas document model: an
// ordered sequence of Markdown content blocks and the structural
// mutations an agent-driven edit plan applies to it.
package canvas

import (
	"github.com/lithammer/shortuuid/v4"
)

// Block is the atomic content unit of a canvas document. Block order is
// significant and carried by the slice position, not by a field.
type Block struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	// IsEditing is a transient UI flag. It travels with the block for
	// client compatibility but carries no document semantics.
	IsEditing bool `json:"isEditing"`
}

// NewBlock mints a block with a fresh collision-resistant id.
func NewBlock(content string) Block {
	return Block{
		ID:      shortuuid.New(),
		Content: content,
	}
}

// Contents returns the ordered block contents. Mostly useful in tests
// and prompt construction.
func Contents(blocks []Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Content
	}
	return out
}
