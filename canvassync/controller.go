// Package canvassync keeps one client's in-flight canvas edits in sync
// with the store. Edits apply optimistically to an in-memory sequence
// and persist after a quiet window, so bursts of keystrokes coalesce
// into a single save.
package canvassync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/canvas"
	"github.com/genesiss-tech/genesiss/internal/debounce"
	"github.com/genesiss-tech/genesiss/store"
)

// ErrLocked is returned for edits attempted while an agent mutation is
// in flight.
var ErrLocked = errors.New("canvas is locked")

// ErrBlockNotFound is returned when an edit names an unknown block id.
var ErrBlockNotFound = errors.New("block not found")

const saveTimeout = 10 * time.Second

// Controller tracks the live block sequence of one open document.
type Controller struct {
	chatID string
	store  *store.Store
	sched  *debounce.Scheduler
	delay  time.Duration

	mu     sync.Mutex
	blocks []canvas.Block
	locked bool
}

// NewController creates a controller for chatID. delay is the quiet
// window before a pending edit is persisted.
func NewController(ctx context.Context, s *store.Store, sched *debounce.Scheduler, chatID string, delay time.Duration) (*Controller, error) {
	blocks, err := s.GetCanvas(ctx, chatID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	return &Controller{
		chatID: chatID,
		store:  s,
		sched:  sched,
		delay:  delay,
		blocks: blocks,
	}, nil
}

// Blocks returns a snapshot of the current sequence.
func (c *Controller) Blocks() []canvas.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]canvas.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// AppendBlock adds a fresh block at the end of the sequence.
func (c *Controller) AppendBlock(content string) (canvas.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return canvas.Block{}, ErrLocked
	}

	block := canvas.NewBlock(content)
	c.blocks = append(c.blocks, block)
	c.scheduleSaveLocked()
	return block, nil
}

// EditBlock replaces the content of the block with the given id.
func (c *Controller) EditBlock(id, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrLocked
	}

	for i := range c.blocks {
		if c.blocks[i].ID == id {
			c.blocks[i].Content = content
			c.scheduleSaveLocked()
			return nil
		}
	}
	return errors.Wrap(ErrBlockNotFound, id)
}

// InsertBlocks inserts fresh blocks at the given positions.
func (c *Controller) InsertBlocks(contents []string, positions []int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrLocked
	}

	inserted, err := canvas.InsertAt(contents, positions, c.blocks)
	if err != nil {
		return err
	}
	c.blocks = inserted
	c.scheduleSaveLocked()
	return nil
}

// Lock marks the document while an agent mutation is in flight. Client
// edits are rejected until Unlock. The lock is per controller, not per
// document; concurrent sessions are not fenced.
func (c *Controller) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
}

func (c *Controller) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = false
}

// Refresh drops local state and reloads the stored canvas. Called after
// an agent turn rewrote the document; any unsaved local edit is
// discarded in favor of the stored sequence.
func (c *Controller) Refresh(ctx context.Context) error {
	blocks, err := c.store.GetCanvas(ctx, c.chatID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	c.sched.Cancel(c.chatID)
	c.mu.Lock()
	c.blocks = blocks
	c.mu.Unlock()
	return nil
}

// Flush persists any pending edit immediately.
func (c *Controller) Flush() {
	c.sched.Flush(c.chatID)
}

// Close flushes pending edits. The shared scheduler stays running.
func (c *Controller) Close() {
	c.Flush()
}

func (c *Controller) scheduleSaveLocked() {
	c.sched.Schedule(c.chatID, c.delay, c.save)
}

func (c *Controller) save() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	snapshot := c.Blocks()
	if err := c.store.SaveCanvas(ctx, c.chatID, snapshot); err != nil {
		slog.Error("canvassync: save failed", "chat_id", c.chatID, "error", err)
		return
	}
	slog.Debug("canvassync: canvas saved", "chat_id", c.chatID, "blocks", len(snapshot))
}
