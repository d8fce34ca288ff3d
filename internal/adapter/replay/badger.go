package replay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
)

// Badger keeps spent solutions in BadgerDB, each entry expiring with its
// challenge.
type Badger struct {
	db *badger.DB
}

// NewBadger opens a store at path. An empty path opens an in-memory store.
func NewBadger(path string) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func (b *Badger) MarkSpent(ctx context.Context, key []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return entity.ErrSolutionSpent
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, nil).WithTTL(ttl))
	})
	// Two concurrent submissions of one solution: the loser sees a conflict.
	if errors.Is(err, badger.ErrConflict) {
		return entity.ErrSolutionSpent
	}
	return err
}

func (b *Badger) Close() error {
	return b.db.Close()
}
