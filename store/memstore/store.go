// Package memstore is an in-memory store.Store used by tests and the
// "memory" store driver.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/krishkalaria12/pixelmind/common"
	"github.com/krishkalaria12/pixelmind/models"
	"github.com/krishkalaria12/pixelmind/store"
)

var _ store.Store = (*Store)(nil)

var errClosed = errors.New("store closed")

type locker interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

// held is the locker of a transaction view: WithinTx already holds the
// store lock.
type held struct{}

func (held) Lock()    {}
func (held) Unlock()  {}
func (held) RLock()   {}
func (held) RUnlock() {}

type Store struct {
	mu locker
	*data
}

type data struct {
	users        map[string]*models.User
	images       map[string]*models.Image
	transactions map[string]*models.Transaction

	// insertion order, tiebreaker for equal timestamps
	seq    int64
	order  map[string]int64
	closed bool
}

func New() *Store {
	return &Store{
		mu: &sync.RWMutex{},
		data: &data{
			users:        make(map[string]*models.User),
			images:       make(map[string]*models.Image),
			transactions: make(map[string]*models.Transaction),
			order:        make(map[string]int64),
		},
	}
}

func (s *Store) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

// User Store implementation

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists {
		return fmt.Errorf("memstore: create user %s: %w", u.ID, common.ErrAlreadyExists)
	}
	for _, other := range s.users {
		if other.ClerkID == u.ClerkID || other.Email == u.Email || other.Username == u.Username {
			return fmt.Errorf("memstore: create user %s: %w", u.ID, common.ErrAlreadyExists)
		}
	}

	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (s *Store) GetUserByClerkID(_ context.Context, clerkID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.byClerkID(clerkID); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (s *Store) byClerkID(clerkID string) *models.User {
	for _, u := range s.users {
		if u.ClerkID == clerkID {
			return u
		}
	}
	return nil
}

func (s *Store) UpdateUserByClerkID(_ context.Context, clerkID string, p models.UpdateUserParams) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.byClerkID(clerkID)
	if u == nil {
		return nil, common.ErrNotFound
	}
	u.Apply(p)
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (s *Store) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return common.ErrNotFound
	}
	delete(s.users, userID)
	for id, img := range s.images {
		if img.AuthorID == userID {
			delete(s.images, id)
		}
	}
	return nil
}

func (s *Store) IncrementCredits(_ context.Context, userID string, delta int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.CreditBalance += delta
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

// SpendCredits subtracts amount only when the balance covers it.
func (s *Store) SpendCredits(_ context.Context, userID string, amount int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	if u.CreditBalance < amount {
		return nil, fmt.Errorf("memstore: balance %d below %d: %w", u.CreditBalance, amount, common.ErrInsufficientCredits)
	}
	u.CreditBalance -= amount
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	return &cp, nil
}

// Image Store implementation

func (s *Store) CreateImage(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.images[img.ID]; exists {
		return fmt.Errorf("memstore: create image %s: %w", img.ID, common.ErrAlreadyExists)
	}
	if _, ok := s.users[img.AuthorID]; !ok {
		return fmt.Errorf("memstore: create image author %s: %w", img.AuthorID, common.ErrNotFound)
	}

	now := time.Now().UTC()
	img.CreatedAt, img.UpdatedAt = now, now
	cp := *img
	cp.Author = nil
	s.images[img.ID] = &cp
	s.next(img.ID)
	return nil
}

func (s *Store) GetImage(_ context.Context, imageID string) (*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[imageID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return s.withAuthor(img), nil
}

func (s *Store) withAuthor(img *models.Image) *models.Image {
	cp := *img
	if u, ok := s.users[img.AuthorID]; ok {
		cp.Author = &models.Author{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, ClerkID: u.ClerkID}
	}
	return &cp
}

func (s *Store) UpdateImage(_ context.Context, img *models.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.images[img.ID]
	if !ok {
		return common.ErrNotFound
	}
	cp := *img
	cp.Author = nil
	cp.AuthorID = existing.AuthorID
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	s.images[img.ID] = &cp
	img.UpdatedAt = cp.UpdatedAt
	return nil
}

func (s *Store) DeleteImage(_ context.Context, imageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.images[imageID]; !ok {
		return common.ErrNotFound
	}
	delete(s.images, imageID)
	return nil
}

func (s *Store) ListImages(_ context.Context, q models.ImageQuery) ([]*models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.filter(q)
	slices.SortFunc(matched, func(a, b *models.Image) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(s.order[b.ID] - s.order[a.ID])
	})

	if q.Offset >= len(matched) {
		return []*models.Image{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	result := make([]*models.Image, 0, len(matched))
	for _, img := range matched {
		result = append(result, s.withAuthor(img))
	}
	return result, nil
}

func (s *Store) CountImages(_ context.Context, q models.ImageQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.filter(q)), nil
}

func (s *Store) filter(q models.ImageQuery) []*models.Image {
	var publicIDs map[string]bool
	if q.PublicIDs != nil {
		publicIDs = make(map[string]bool, len(q.PublicIDs))
		for _, id := range q.PublicIDs {
			publicIDs[id] = true
		}
	}

	var matched []*models.Image
	for _, img := range s.images {
		if q.AuthorID != "" && img.AuthorID != q.AuthorID {
			continue
		}
		if publicIDs != nil && !publicIDs[img.PublicID] {
			continue
		}
		matched = append(matched, img)
	}
	return matched
}

// Transaction Store implementation

func (s *Store) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.transactions {
		if other.ID == t.ID || other.StripeID == t.StripeID {
			return fmt.Errorf("memstore: create transaction %s: %w", t.StripeID, common.ErrAlreadyExists)
		}
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	cp := *t
	s.transactions[t.ID] = &cp
	s.next(t.ID)
	return nil
}

func (s *Store) GetTransactionByStripeID(_ context.Context, stripeID string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.transactions {
		if t.StripeID == stripeID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *Store) SettleTransaction(_ context.Context, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[transactionID]
	if !ok {
		return common.ErrNotFound
	}
	t.Status = models.StatusSettled
	return nil
}

func (s *Store) ListTransactions(_ context.Context, buyerID string) ([]*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Transaction, 0)
	for _, t := range s.transactions {
		if t.BuyerID == buyerID {
			cp := *t
			result = append(result, &cp)
		}
	}
	slices.SortFunc(result, func(a, b *models.Transaction) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return int(s.order[b.ID] - s.order[a.ID])
	})
	return result, nil
}

// WithinTx holds the store lock while fn runs against a view sharing the
// data, so other callers wait for the commit or rollback. A failing fn
// restores the snapshot taken before it ran. fn must only use tx.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if _, nested := s.mu.(held); nested {
		return fn(ctx, s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Store{mu: held{}, data: s.data}
	snap := tx.snapshot()
	if err := fn(ctx, tx); err != nil {
		tx.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	users        map[string]*models.User
	images       map[string]*models.Image
	transactions map[string]*models.Transaction
	order        map[string]int64
	seq          int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		users:        make(map[string]*models.User, len(s.users)),
		images:       make(map[string]*models.Image, len(s.images)),
		transactions: make(map[string]*models.Transaction, len(s.transactions)),
		order:        maps.Clone(s.order),
		seq:          s.seq,
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	for id, img := range s.images {
		cp := *img
		snap.images[id] = &cp
	}
	for id, t := range s.transactions {
		cp := *t
		snap.transactions[id] = &cp
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = snap.users
	s.images = snap.images
	s.transactions = snap.transactions
	s.order = snap.order
	s.seq = snap.seq
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("memstore: %w", errClosed)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
