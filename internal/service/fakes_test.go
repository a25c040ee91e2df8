package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

var errStoreDown = errors.New("connection refused")

type memTicketRepo struct {
	mu        sync.Mutex
	seq       int
	tickets   map[string]domain.Ticket
	failWith  error
	createErr error
	// dropWrites makes UpdateStatus match without changing anything.
	dropWrites bool
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	ticket.ID = fmt.Sprintf("t%04d", r.seq)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) List(_ context.Context, skip, limit int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	ids := make([]string, 0, len(r.tickets))
	for id := range r.tickets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := []domain.Ticket{}
	for i := skip; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.tickets[ids[i]])
	}
	return out, nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	if id == "" || id[0] != 't' {
		return nil, repository.ErrInvalidID
	}
	t, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *memTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, updatedAt time.Time) (repository.UpdateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return repository.UpdateResult{}, r.failWith
	}
	t, ok := r.tickets[id]
	if !ok {
		return repository.UpdateResult{}, nil
	}
	if r.dropWrites {
		return repository.UpdateResult{Matched: 1}, nil
	}
	res := repository.UpdateResult{Matched: 1}
	if t.Status != status || !t.UpdatedAt.Equal(updatedAt) {
		res.Modified = 1
	}
	t.Status = status
	t.UpdatedAt = updatedAt
	r.tickets[id] = t
	return res, nil
}

func (r *memTicketRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return 0, nil
	}
	delete(r.tickets, id)
	return 1, nil
}

type memUserRepo struct {
	mu      sync.Mutex
	seq     int
	byEmail map[string]domain.User
	updates int
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{byEmail: make(map[string]domain.User)}
	for _, u := range users {
		r.seq++
		if u.ID == "" {
			u.ID = fmt.Sprintf("u%d", r.seq)
		}
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return repository.ErrDuplicate
	}
	r.seq++
	user.ID = fmt.Sprintf("u%d", r.seq)
	r.byEmail[user.Email] = *user
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for email, u := range r.byEmail {
		if u.ID == id {
			u.Password = password
			r.byEmail[email] = u
			r.updates++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memUserRepo) ForEach(_ context.Context, fn func(*domain.User) error) error {
	r.mu.Lock()
	users := make([]domain.User, 0, len(r.byEmail))
	for _, u := range r.byEmail {
		users = append(users, u)
	}
	r.mu.Unlock()
	for i := range users {
		if err := fn(&users[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *memUserRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memUserRepo) password(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byEmail[email].Password
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

func (d *recordingDispatcher) last() events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events[len(d.events)-1]
}
