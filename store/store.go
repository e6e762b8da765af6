// Package store persists chat and canvas records as JSON blobs behind a
// pluggable key-value Driver. A chat record and its canvas record share
// one logical document id under distinct keys.
package store

import (
	"context"
	"log/slog"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/genesiss-tech/genesiss/canvas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// canvasKeyPrefix namespaces canvas records away from chat records,
// which are keyed by the document id verbatim.
const canvasKeyPrefix = "GENESISSCANVAS"

// Store provides typed access to the chat and canvas records of a
// document. It is constructed once per process and injected into
// handlers; it holds no per-document state.
//
// Writes are full-document overwrites with no version check: two
// writers racing on one document id resolve last-write-wins. The
// product assumes a single editor at a time; this is a documented
// limitation, not a guarantee.
type Store struct {
	driver Driver
}

// New creates a Store over the given driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.driver.Ping(ctx)
}

// GetCanvas loads the block sequence for chatID. Returns ErrNotFound
// when the canvas was never written.
func (s *Store) GetCanvas(ctx context.Context, chatID string) ([]canvas.Block, error) {
	data, err := s.driver.Get(ctx, canvasKeyPrefix+chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get canvas %s", chatID)
	}

	var blocks []canvas.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, errors.Wrapf(err, "failed to decode canvas %s", chatID)
	}
	return blocks, nil
}

// SaveCanvas overwrites the block sequence for chatID.
func (s *Store) SaveCanvas(ctx context.Context, chatID string, blocks []canvas.Block) error {
	if blocks == nil {
		blocks = []canvas.Block{}
	}
	data, err := json.Marshal(blocks)
	if err != nil {
		return errors.Wrapf(err, "failed to encode canvas %s", chatID)
	}
	if err := s.driver.Put(ctx, canvasKeyPrefix+chatID, data); err != nil {
		return errors.Wrapf(err, "failed to save canvas %s", chatID)
	}
	slog.Debug("store: canvas saved", "chat_id", chatID, "blocks", len(blocks))
	return nil
}

// GetChat loads the chat record for chatID. Returns ErrNotFound when the
// chat was never written.
func (s *Store) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	data, err := s.driver.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "failed to get chat %s", chatID)
	}

	chat := &Chat{}
	if err := json.Unmarshal(data, chat); err != nil {
		return nil, errors.Wrapf(err, "failed to decode chat %s", chatID)
	}
	return chat, nil
}

// GetChatOrEmpty loads the chat record, treating a missing record as an
// empty chat. Only storage failures surface.
func (s *Store) GetChatOrEmpty(ctx context.Context, chatID string) (*Chat, error) {
	chat, err := s.GetChat(ctx, chatID)
	if errors.Is(err, ErrNotFound) {
		return &Chat{Messages: []Message{}}, nil
	}
	return chat, err
}

// SaveChat overwrites the chat record for chatID.
func (s *Store) SaveChat(ctx context.Context, chatID string, chat *Chat) error {
	data, err := json.Marshal(chat)
	if err != nil {
		return errors.Wrapf(err, "failed to encode chat %s", chatID)
	}
	if err := s.driver.Put(ctx, chatID, data); err != nil {
		return errors.Wrapf(err, "failed to save chat %s", chatID)
	}
	slog.Debug("store: chat saved", "chat_id", chatID, "messages", len(chat.Messages))
	return nil
}
