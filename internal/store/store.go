// internal/store/store.go
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"pairdp/pkg/api"
)

// Config for the result store.
type Config struct {
	Path     string // ignored when InMemory
	InMemory bool

	SyncWrites     bool
	GCInterval     time.Duration // 0 disables value log GC
	GCDiscardRatio float64

	Logger *slog.Logger // nil silences badger
}

func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true, GCInterval: 5 * time.Minute, GCDiscardRatio: 0.5}
}

func InMemoryConfig() Config { return Config{InMemory: true} }

// Store caches results keyed by Key. Safe for concurrent use.
type Store struct {
	db     *badger.DB
	stop   chan struct{}
	done   chan struct{}
	closed sync.Once
}

const prefix = "result/v1/"

// badgerLogger adapts slog to badger's logger interface.
type badgerLogger struct{ l *slog.Logger }

func (b badgerLogger) Errorf(f string, a ...any)   { b.l.Error(fmt.Sprintf(f, a...)) }
func (b badgerLogger) Warningf(f string, a ...any) { b.l.Warn(fmt.Sprintf(f, a...)) }
func (b badgerLogger) Infof(f string, a ...any)    { b.l.Debug(fmt.Sprintf(f, a...)) }
func (b badgerLogger) Debugf(f string, a ...any)   { b.l.Debug(fmt.Sprintf(f, a...)) }

func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("store: path is required for a persistent store")
	}
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	s := &Store{db: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stop, s.done = make(chan struct{}), make(chan struct{})
		go s.gc(cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
	}
	return s, nil
}

func (s *Store) gc(every time.Duration, ratio float64, log *slog.Logger) {
	defer close(s.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			// ErrNoRewrite just means nothing to collect
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) && log != nil {
				log.Warn("store value log GC", slog.String("error", err.Error()))
			}
		}
	}
}

// Key hashes the inputs that determine a result. Parts are length-prefixed
// so ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s;", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored result for key; ok is false on a miss.
func (s *Store) Get(ctx context.Context, key string) (res api.ResultV1, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return res, false, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return item.Value(func(v []byte) error { return json.Unmarshal(v, &res) })
	})
	if err != nil {
		return api.ResultV1{}, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return res, ok, nil
}

func (s *Store) Put(ctx context.Context, key string, res api.ResultV1) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+key), b)
	}); err != nil {
		return fmt.Errorf("store: put %s: %w", key, err)
	}
	return nil
}

// Close stops GC and closes the database. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closed.Do(func() {
		if s.stop != nil {
			close(s.stop)
			<-s.done
		}
		err = s.db.Close()
	})
	return err
}
