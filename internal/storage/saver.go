package storage

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Saver runs saves against a Persister with at most one save in flight.
type Saver struct {
	p Persister

	busy     atomic.Bool
	wg       sync.WaitGroup
	inflight atomic.Int32

	lastSaved atomic.Int64
	done      func(err error)
}

type SaverOpt func(*Saver)

// WithSaveHook is called after every background save with its result.
func WithSaveHook(f func(err error)) SaverOpt {
	return func(s *Saver) {
		s.done = f
	}
}

func NewSaver(p Persister, opts ...SaverOpt) *Saver {
	s := &Saver{p: p}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TrySave starts a background save of snap unless one is already running,
// in which case it reports false and the snapshot is dropped.
func (s *Saver) TrySave(ctx context.Context, snap *Snapshot) bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}

	s.wg.Add(1)
	s.inflight.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inflight.Add(-1)
		defer s.busy.Store(false)

		err := s.save(ctx, snap)
		if err != nil {
			slog.WarnContext(ctx, "autosave failed", "error", err)
		}
		if s.done != nil {
			s.done(err)
		}
	}()
	return true
}

// Flush waits for any running save and then saves snap. It returns when ctx
// ends even if the persister does not; that save keeps running in the
// background and Pending stays true until it finishes.
func (s *Saver) Flush(ctx context.Context, snap *Snapshot) error {
	result := make(chan error, 1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Add(-1)
		s.wg.Wait()
		if ctx.Err() != nil {
			result <- ctx.Err()
			return
		}
		result <- s.save(ctx, snap)
	}()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether any save is still running.
func (s *Saver) Pending() bool {
	return s.inflight.Load() > 0
}

// LastSaved is the epoch millisecond timestamp of the last successful save.
func (s *Saver) LastSaved() int64 {
	return s.lastSaved.Load()
}

func (s *Saver) save(ctx context.Context, snap *Snapshot) error {
	if err := s.p.Save(ctx, snap); err != nil {
		return err
	}
	s.lastSaved.Store(snap.LastSaved)
	return nil
}
