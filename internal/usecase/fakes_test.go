package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"flipearn/internal/domain/entity"
	"flipearn/internal/domain/repository"
	"flipearn/internal/domain/service"
	"flipearn/pkg/errors"

	"github.com/shopspring/decimal"
)

type memState struct {
	users        map[string]*entity.User
	listings     map[string]*entity.Listing
	credentials  map[string]*entity.Credential
	chats        map[string]*entity.Chat
	messages     []*entity.Message
	withdrawals  []*entity.Withdrawal
	transactions []*entity.Transaction
	nextMsgID    int64
}

func newMemState() *memState {
	return &memState{
		users:       make(map[string]*entity.User),
		listings:    make(map[string]*entity.Listing),
		credentials: make(map[string]*entity.Credential),
		chats:       make(map[string]*entity.Chat),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.listings {
		c.listings[k] = copyListing(v)
	}
	for k, v := range s.credentials {
		cr := *v
		c.credentials[k] = &cr
	}
	for k, v := range s.chats {
		ch := *v
		c.chats[k] = &ch
	}
	c.messages = append(c.messages, s.messages...)
	c.withdrawals = append(c.withdrawals, s.withdrawals...)
	c.transactions = append(c.transactions, s.transactions...)
	c.nextMsgID = s.nextMsgID
	return c
}

func copyListing(l *entity.Listing) *entity.Listing {
	c := *l
	c.Images = append([]string{}, l.Images...)
	return &c
}

type memDB struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	state *memState
	clock time.Time
}

type memStore struct {
	db   *memDB
	inTx bool
}

func newMemStore() *memStore {
	return &memStore{db: &memDB{state: newMemState(), clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (d *memDB) tick() time.Time {
	d.clock = d.clock.Add(time.Second)
	return d.clock
}

func (s *memStore) Users() repository.UserRepository               { return &memUsers{s.db} }
func (s *memStore) Listings() repository.ListingRepository         { return &memListings{s.db} }
func (s *memStore) Credentials() repository.CredentialRepository   { return &memCredentials{s.db} }
func (s *memStore) Chats() repository.ChatRepository               { return &memChats{s.db} }
func (s *memStore) Withdrawals() repository.WithdrawalRepository   { return &memWithdrawals{s.db} }
func (s *memStore) Transactions() repository.TransactionRepository { return &memTransactions{s.db} }

func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	s.db.mu.Lock()
	snapshot := s.db.state.clone()
	s.db.mu.Unlock()

	if err := fn(ctx, &memStore{db: s.db, inTx: true}); err != nil {
		s.db.mu.Lock()
		s.db.state = snapshot
		s.db.mu.Unlock()
		return err
	}
	return nil
}

// seed helpers

func (s *memStore) addUser(id string, earned, withdrawn int64) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.state.users[id] = &entity.User{
		ID:        id,
		Email:     id + "@example.com",
		Name:      id,
		Earned:    decimal.NewFromInt(earned),
		Withdrawn: decimal.NewFromInt(withdrawn),
	}
}

func (s *memStore) addListing(l *entity.Listing) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.db.tick()
	}
	s.db.state.listings[l.ID] = copyListing(l)
}

func (s *memStore) listing(id string) *entity.Listing {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	l, ok := s.db.state.listings[id]
	if !ok {
		return nil
	}
	return copyListing(l)
}

func (s *memStore) user(id string) *entity.User {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u := *s.db.state.users[id]
	return &u
}

func (s *memStore) countListings(pred func(*entity.Listing) bool) int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	n := 0
	for _, l := range s.db.state.listings {
		if pred(l) {
			n++
		}
	}
	return n
}

func (s *memStore) chatCount() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.state.chats)
}

func (s *memStore) withdrawalCount() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.state.withdrawals)
}

// users

type memUsers struct{ db *memDB }

func (r *memUsers) Upsert(ctx context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if existing, ok := r.db.state.users[user.ID]; ok {
		if user.Email != "" {
			existing.Email = user.Email
		}
		if user.Name != "" {
			existing.Name = user.Name
		}
		return nil
	}
	u := *user
	r.db.state.users[user.ID] = &u
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.state.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	c := *u
	return &c, nil
}

func (r *memUsers) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memUsers) AddWithdrawn(ctx context.Context, id string, amount decimal.Decimal) (*entity.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.state.users[id]
	if !ok || u.Earned.Sub(u.Withdrawn).LessThan(amount) {
		return nil, errors.BadRequest("Insufficient balance", nil)
	}
	u.Withdrawn = u.Withdrawn.Add(amount)
	c := *u
	return &c, nil
}

// listings

type memListings struct{ db *memDB }

func (r *memListings) withOwner(l *entity.Listing) *entity.Listing {
	c := copyListing(l)
	if u, ok := r.db.state.users[l.OwnerID]; ok {
		c.Owner = u.Profile()
	}
	return c
}

func (r *memListings) Create(ctx context.Context, l *entity.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if len(l.Images) > 5 {
		return errors.Internal("images check violated", nil)
	}
	l.CreatedAt = r.db.tick()
	l.UpdatedAt = l.CreatedAt
	r.db.state.listings[l.ID] = copyListing(l)
	return nil
}

func (r *memListings) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.state.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return r.withOwner(l), nil
}

func (r *memListings) GetForUpdate(ctx context.Context, id string) (*entity.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.state.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return copyListing(l), nil
}

func (r *memListings) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, l := range r.db.state.listings {
		if l.OwnerID == ownerID && l.Status != entity.ListingStatusDeleted {
			n++
		}
	}
	return n, nil
}

func (r *memListings) Update(ctx context.Context, l *entity.Listing) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.listings[l.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	if len(l.Images) > 5 {
		return errors.Internal("images check violated", nil)
	}
	l.UpdatedAt = r.db.tick()
	r.db.state.listings[l.ID] = copyListing(l)
	return nil
}

func (r *memListings) mutate(id string, fn func(l *entity.Listing) error) (*entity.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	l, ok := r.db.state.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	if err := fn(l); err != nil {
		return nil, err
	}
	l.UpdatedAt = r.db.tick()
	return r.withOwner(l), nil
}

func (r *memListings) UpdateStatus(ctx context.Context, id string, status entity.ListingStatus) (*entity.Listing, error) {
	return r.mutate(id, func(l *entity.Listing) error {
		l.Status = status
		return nil
	})
}

func (r *memListings) SoftDelete(ctx context.Context, id, ownerID string) (*entity.Listing, error) {
	return r.mutate(id, func(l *entity.Listing) error {
		if l.OwnerID != ownerID {
			return errors.NotFound("Listing", nil)
		}
		next, err := entity.NextStatus(l.Status, entity.ListingActionDelete)
		if err != nil {
			return errors.NotFound("Listing", nil)
		}
		l.Status = next
		l.Featured = false
		return nil
	})
}

func (r *memListings) ClearFeatured(ctx context.Context, ownerID, exceptID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, l := range r.db.state.listings {
		if l.OwnerID == ownerID && l.ID != exceptID {
			l.Featured = false
		}
	}
	return nil
}

func (r *memListings) SetFeatured(ctx context.Context, id string) (*entity.Listing, error) {
	return r.mutate(id, func(l *entity.Listing) error {
		for _, other := range r.db.state.listings {
			if other.OwnerID == l.OwnerID && other.ID != l.ID && other.Featured {
				return errors.Conflict("Another listing is already featured")
			}
		}
		l.Featured = true
		return nil
	})
}

func (r *memListings) SetCredentialSubmitted(ctx context.Context, id string) error {
	_, err := r.mutate(id, func(l *entity.Listing) error {
		l.IsCredentialSubmitted = true
		return nil
	})
	return err
}

func (r *memListings) SetCredentialChanged(ctx context.Context, id string) (*entity.Listing, error) {
	return r.mutate(id, func(l *entity.Listing) error {
		l.IsCredentialChanged = true
		return nil
	})
}

func (r *memListings) sorted(pred func(*entity.Listing) bool) []*entity.Listing {
	out := make([]*entity.Listing, 0)
	for _, l := range r.db.state.listings {
		if pred(l) {
			out = append(out, r.withOwner(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memListings) ListPublic(ctx context.Context) ([]*entity.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(l *entity.Listing) bool { return l.Status == entity.ListingStatusActive }), nil
}

func (r *memListings) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Listing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.sorted(func(l *entity.Listing) bool {
		return l.OwnerID == ownerID && l.Status != entity.ListingStatusDeleted
	}), nil
}

// credentials

type memCredentials struct{ db *memDB }

func (r *memCredentials) Create(ctx context.Context, c *entity.Credential) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.state.credentials[c.ListingID]; ok {
		return errors.Conflict("Credential already submitted for this listing")
	}
	c.CreatedAt = r.db.tick()
	cp := *c
	r.db.state.credentials[c.ListingID] = &cp
	return nil
}

func (r *memCredentials) GetByListingID(ctx context.Context, listingID string) (*entity.Credential, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.state.credentials[listingID]
	if !ok {
		return nil, errors.NotFound("Credential", nil)
	}
	cp := *c
	return &cp, nil
}

// chats

type memChats struct{ db *memDB }

func (r *memChats) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.state.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	cp := *c
	return &cp, nil
}

func (r *memChats) FindByParticipants(ctx context.Context, listingID, chatUserID, ownerUserID string) (*entity.Chat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.state.chats {
		if c.ListingID == listingID && c.ChatUserID == chatUserID && c.OwnerUserID == ownerUserID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *memChats) CreateIfAbsent(ctx context.Context, chat *entity.Chat) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.state.chats {
		if c.ListingID == chat.ListingID && c.ChatUserID == chat.ChatUserID && c.OwnerUserID == chat.OwnerUserID {
			return nil
		}
	}
	cp := *chat
	cp.CreatedAt = r.db.tick()
	cp.UpdatedAt = cp.CreatedAt
	r.db.state.chats[chat.ID] = &cp
	return nil
}

func (r *memChats) ListByUser(ctx context.Context, userID string) ([]*entity.Chat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Chat, 0)
	for _, c := range r.db.state.chats {
		if c.IsParticipant(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memChats) MarkLastMessageRead(ctx context.Context, seen *entity.Message) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.state.chats[seen.ChatID]
	if !ok || c.LastMessageSenderID != seen.SenderID || !c.UpdatedAt.Equal(seen.CreatedAt) {
		return false, nil
	}
	c.IsLastMessageRead = true
	return true, nil
}

func (r *memChats) CreateMessage(ctx context.Context, m *entity.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.state.nextMsgID++
	m.ID = r.db.state.nextMsgID
	m.CreatedAt = r.db.tick()
	cp := *m
	r.db.state.messages = append(r.db.state.messages, &cp)
	return nil
}

func (r *memChats) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Message, 0)
	for _, m := range r.db.state.messages {
		if m.ChatID == chatID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memChats) UpdateLastMessage(ctx context.Context, m *entity.Message) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.state.chats[m.ChatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.LastMessage = m.Message
	c.LastMessageSenderID = m.SenderID
	c.IsLastMessageRead = false
	c.UpdatedAt = m.CreatedAt
	return nil
}

// ledger

type memWithdrawals struct{ db *memDB }

func (r *memWithdrawals) Create(ctx context.Context, w *entity.Withdrawal) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	w.CreatedAt = r.db.tick()
	cp := *w
	r.db.state.withdrawals = append(r.db.state.withdrawals, &cp)
	return nil
}

func (r *memWithdrawals) ListByUser(ctx context.Context, userID string) ([]*entity.Withdrawal, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Withdrawal, 0)
	for i := len(r.db.state.withdrawals) - 1; i >= 0; i-- {
		if w := r.db.state.withdrawals[i]; w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memTransactions struct{ db *memDB }

func (r *memTransactions) ListPaidOrders(ctx context.Context, userID string) ([]*entity.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*entity.Order, 0)
	for i := len(r.db.state.transactions) - 1; i >= 0; i-- {
		t := r.db.state.transactions[i]
		if t.UserID != userID || !t.IsPaid {
			continue
		}
		o := &entity.Order{Transaction: *t}
		if l, ok := r.db.state.listings[t.ListingID]; ok {
			o.Listing = copyListing(l)
		}
		if c, ok := r.db.state.credentials[t.ListingID]; ok {
			cp := *c
			o.Credential = &cp
		}
		out = append(out, o)
	}
	return out, nil
}

// collaborators

type fakeUploader struct {
	mu       sync.Mutex
	uploaded []string
	failOn   string
}

func (u *fakeUploader) Upload(ctx context.Context, file io.Reader, filename, contentType string) (string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	if filename == u.failOn {
		return "", fmt.Errorf("provider rejected %s", filename)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploaded = append(u.uploaded, filename)
	return "https://cdn.example.com/flip-earn/" + filename, nil
}

func (u *fakeUploader) Close() error { return nil }

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.uploaded)
}

func imageFiles(names ...string) []service.ImageFile {
	files := make([]service.ImageFile, 0, len(names))
	for _, name := range names {
		files = append(files, service.ImageFile{
			Filename:    name,
			ContentType: "image/png",
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader([]byte("png"))), nil
			},
		})
	}
	return files
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []service.Mail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, mail service.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type fakeTasks struct {
	mu     sync.Mutex
	names  []string
	tasks  []func(ctx context.Context) error
	reject bool
}

func (f *fakeTasks) Submit(name string, fn func(ctx context.Context) error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject {
		return false
	}
	f.names = append(f.names, name)
	f.tasks = append(f.tasks, fn)
	return true
}

func (f *fakeTasks) runAll(ctx context.Context) error {
	f.mu.Lock()
	tasks := append([]func(ctx context.Context) error{}, f.tasks...)
	f.mu.Unlock()
	for _, t := range tasks {
		if err := t(ctx); err != nil {
			return err
		}
	}
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	listings    []*entity.Listing
	hit         bool
	invalidated int
}

func (c *fakeCache) GetPublic(ctx context.Context) ([]*entity.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listings, c.hit
}

func (c *fakeCache) SetPublic(ctx context.Context, listings []*entity.Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = listings
	c.hit = true
}

func (c *fakeCache) InvalidatePublic(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = nil
	c.hit = false
	c.invalidated++
}

type fakeLimiter struct {
	allow bool
}

func (l fakeLimiter) Allow(userID, action string) (bool, time.Duration) {
	if l.allow {
		return true, 0
	}
	return false, 30 * time.Second
}
