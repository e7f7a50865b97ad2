package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pribylovaa/go-diary/internal/client"
	"github.com/pribylovaa/go-diary/internal/models"
)

// fakeBackend — diary-service в памяти.
type fakeBackend struct {
	mu        sync.Mutex
	user      *models.User
	ready     bool
	nextID    int
	listeners map[int]func(*models.User)

	entries   []models.Entry
	listErrs  []error
	listCalls int
	createErr error
	uploads   []string
	// writes — все Create/Update, дошедшие до бэкенда.
	writes []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{listeners: make(map[int]func(*models.User))}
}

func (f *fakeBackend) OnAuthStateChanged(fn func(*models.User)) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.listeners[id] = fn
	ready, u := f.ready, f.user
	f.mu.Unlock()

	if ready {
		fn(u)
	}

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

func (f *fakeBackend) notify() {
	f.mu.Lock()
	u := f.user
	fns := make([]func(*models.User), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(u)
	}
}

func (f *fakeBackend) Init(context.Context) error {
	f.mu.Lock()
	f.ready = true
	f.mu.Unlock()
	f.notify()
	return nil
}

func (f *fakeBackend) Register(_ context.Context, email, _, name string) (*models.User, error) {
	f.mu.Lock()
	f.user = &models.User{UID: "u1", Email: email, DisplayName: name}
	u := *f.user
	f.mu.Unlock()
	f.notify()
	return &u, nil
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (*models.User, error) {
	if password != "secret1" {
		return nil, &client.APIError{Status: 401, Code: "invalid_credentials"}
	}

	f.mu.Lock()
	f.user = &models.User{UID: "u1", Email: email}
	u := *f.user
	f.mu.Unlock()
	f.notify()
	return &u, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.mu.Lock()
	f.user = nil
	f.mu.Unlock()
	f.notify()
	return nil
}

func (f *fakeBackend) List(_ context.Context, userID string) ([]models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return nil, err
	}

	out := make([]models.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeBackend) ByDate(_ context.Context, userID, date string) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.entries {
		if s, ok := e.Date.Text(); ok && s == date && e.UserID == userID {
			cp := e
			return &cp, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeBackend) Create(_ context.Context, userID string, e models.Entry) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes = append(f.writes, "create")
	if f.createErr != nil {
		err := f.createErr
		f.createErr = nil
		return "", err
	}

	e.ID = fmt.Sprintf("e%d", len(f.entries)+1)
	e.UserID = userID
	f.entries = append(f.entries, e)
	return e.ID, nil
}

func (f *fakeBackend) Update(_ context.Context, userID, entryID string, p models.EntryPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes = append(f.writes, "update "+entryID)

	for i, e := range f.entries {
		if e.ID == entryID && e.UserID == userID {
			f.entries[i] = p.Apply(e)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeBackend) UploadImage(_ context.Context, _, contentType string, size int64, body io.Reader) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	if int64(len(b)) != size {
		return "", fmt.Errorf("size mismatch")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, contentType)
	return fmt.Sprintf("https://img.local/%d", len(f.uploads)), nil
}

var _ Backend = (*fakeBackend)(nil)
