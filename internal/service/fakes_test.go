package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/queue"
	"github.com/iliyamo/shop-admin/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	nextID uint64
	byID   map[uint64]model.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[uint64]model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email || x.Username == u.Username {
			return repository.ErrConflict
		}
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now().UTC()
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == email || x.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == email {
			return x, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrNotFound
}

type memProducts struct {
	mu        sync.Mutex
	nextID    uint64
	rows      map[uint64]model.Product
	createErr error
	calls     int
}

func newMemProducts() *memProducts { return &memProducts{rows: map[uint64]model.Product{}} }

func (m *memProducts) List(context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	out := make([]model.Product, 0, len(m.rows))
	for id := m.nextID; id > 0; id-- {
		if p, ok := m.rows[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) GetByID(_ context.Context, id uint64) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if p, ok := m.rows[id]; ok {
		return p, nil
	}
	return model.Product{}, repository.ErrNotFound
}

func (m *memProducts) Create(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now().UTC()
	m.rows[p.ID] = *p
	return nil
}

func (m *memProducts) Update(_ context.Context, id uint64, name string, description *string, price float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	p, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Name, p.Description, p.Price = name, description, price
	m.rows[id] = p
	return nil
}

func (m *memProducts) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CatalogEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.CatalogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// imageHeader builds a multipart file header with the given declared type.
func imageHeader(t *testing.T, filename, mimeType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="productImage"; filename="`+filename+`"`)
	h.Set("Content-Type", mimeType)
	pw, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = pw.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["productImage"][0]
}
