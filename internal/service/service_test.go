package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AditRobertho/eshop-backend/internal/dbtest"
	"github.com/AditRobertho/eshop-backend/internal/hash"
	"github.com/AditRobertho/eshop-backend/internal/models"
	"github.com/AditRobertho/eshop-backend/internal/repo"
	"github.com/AditRobertho/eshop-backend/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

type publishedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type memStore struct {
	mu      sync.Mutex
	objs    map[string][]byte
	deleted []string
	err     error
	// limit fails every Put once this many objects are stored; zero means no limit.
	limit int
}

func (m *memStore) Put(_ context.Context, name, _ string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.limit > 0 && len(m.objs) >= m.limit {
		return "", errBoom
	}
	if m.objs == nil {
		m.objs = map[string][]byte{}
	}
	m.objs[name] = body
	return "/public/uploads/" + name, nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, name)
	m.deleted = append(m.deleted, name)
	return nil
}

type fakeIndex struct {
	indexed []string
	deleted []string
	hits    []models.Product
	err     error
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.indexed = append(f.indexed, p.ID.String())
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.hits)), f.hits, nil
}

type testEnv struct {
	repo     *repo.GormRepo
	events   *recordingPublisher
	auth     *AuthService
	users    *UserService
	cats     *CategoryService
	products *ProductService
	images   *memStore
	issuer   *tokens.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: dbtest.New(t)}
	h := hash.New(bcrypt.MinCost)
	iss, err := tokens.NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)

	ev := &recordingPublisher{}
	img := &memStore{}

	return &testEnv{
		repo:     r,
		events:   ev,
		issuer:   iss,
		images:   img,
		auth:     &AuthService{Repo: r, Hasher: h, Issuer: iss, Events: ev},
		users:    &UserService{Repo: r, Hasher: h, Events: ev},
		cats:     &CategoryService{Repo: r, Events: ev},
		products: &ProductService{Repo: r, Images: img, Events: ev},
	}
}

func strPtr(s string) *string { return &s }

func uniqueEmail() string {
	return fmt.Sprintf("u_%d@example.com", time.Now().UnixNano())
}

var errBoom = errors.New("boom")
