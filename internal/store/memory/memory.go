package memory

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"sync"
	"time"
)

// Store keeps every table in maps guarded by one mutex. WithTx holds the
// write lock for the whole callback and marks the ctx so store methods
// called inside skip their own locking.
type Store struct {
	mu  sync.RWMutex
	Now func() time.Time

	seq        int64
	items      map[int64]rental.Item
	orders     map[int64]rental.Order
	users      map[int64]user
	categories map[int64]rental.Category
	feedback   map[int64]rental.Feedback
	inquiries  map[int64]rental.Inquiry
}

type user struct {
	rental.Customer
	PasswordHash string
}

var (
	_ rental.ItemStore         = (*Store)(nil)
	_ rental.Ledger            = (*Store)(nil)
	_ rental.CustomerDirectory = (*Store)(nil)
	_ rental.TxManager         = (*Store)(nil)
	_ rental.CategoryStore     = (*Store)(nil)
	_ rental.FeedbackStore     = (*Store)(nil)
	_ rental.InquiryStore      = (*Store)(nil)
	_ rental.StatsStore        = (*Store)(nil)
	_ rental.AdminStore        = (*Store)(nil)
)

func New() *Store {
	return &Store{
		items:      make(map[int64]rental.Item),
		orders:     make(map[int64]rental.Order),
		users:      make(map[int64]user),
		categories: make(map[int64]rental.Category),
		feedback:   make(map[int64]rental.Feedback),
		inquiries:  make(map[int64]rental.Inquiry),
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	b, _ := ctx.Value(txKey{}).(bool)
	return b
}

func (s *Store) rlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RLock()
	}
}

func (s *Store) runlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.RUnlock()
	}
}

func (s *Store) wlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Lock()
	}
}

func (s *Store) wunlock(ctx context.Context) {
	if !inTx(ctx) {
		s.mu.Unlock()
	}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	seq        int64
	items      map[int64]rental.Item
	orders     map[int64]rental.Order
	users      map[int64]user
	categories map[int64]rental.Category
	feedback   map[int64]rental.Feedback
	inquiries  map[int64]rental.Inquiry
}

func clone[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		seq:        s.seq,
		items:      clone(s.items),
		orders:     clone(s.orders),
		users:      clone(s.users),
		categories: clone(s.categories),
		feedback:   clone(s.feedback),
		inquiries:  clone(s.inquiries),
	}
}

func (s *Store) restore(sn snapshot) {
	s.seq = sn.seq
	s.items, s.orders, s.users = sn.items, sn.orders, sn.users
	s.categories, s.feedback, s.inquiries = sn.categories, sn.feedback, sn.inquiries
}

// WithTx rolls every table back to its state before fn when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sn := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(sn)
			panic(p)
		}
		if err != nil {
			s.restore(sn)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%w: %s %d", rental.ErrNotFound, what, id)
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", rental.ErrConstraintViolation, fmt.Sprintf(format, args...))
}
