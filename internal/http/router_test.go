package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"log/slog"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/splax/jot/internal/domain"
	"github.com/splax/jot/internal/repository"
	"github.com/splax/jot/internal/service/auth"
	"github.com/splax/jot/internal/service/note"
	"github.com/splax/jot/pkg/config"
)

// memStore is an in-memory stand-in for the postgres repository.
type memStore struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	byEmail  map[string]int64
	notes    map[int64]*domain.Note
	nextUser int64
	nextNote int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
		notes:   make(map[int64]*domain.Note),
	}
}

func (s *memStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	s.nextUser++
	user.ID = s.nextUser
	copied := *user
	s.users[user.ID] = &copied
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

func (s *memStore) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memStore) CreateNote(_ context.Context, n *domain.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNote++
	n.ID = s.nextNote
	copied := *n
	s.notes[n.ID] = &copied
	return nil
}

func (s *memStore) GetNote(_ context.Context, id, ownerID int64) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	copied := *n
	return &copied, nil
}

func (s *memStore) ListNotes(_ context.Context, ownerID int64, titleQuery string) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	matches := make([]domain.Note, 0)
	for id := int64(1); id <= s.nextNote; id++ {
		n, ok := s.notes[id]
		if !ok || n.OwnerID != ownerID {
			continue
		}
		if titleQuery != "" && !strings.Contains(strings.ToLower(n.Title), strings.ToLower(titleQuery)) {
			continue
		}
		matches = append(matches, *n)
	}
	return matches, nil
}

func (s *memStore) UpdateNote(_ context.Context, id, ownerID int64, title, content string) (*domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	n.Title = title
	n.Content = content
	copied := *n
	return &copied, nil
}

func (s *memStore) DeleteNote(_ context.Context, id, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func newTestRouter() *Router {
	cfg := config.Load()
	cfg.JWTSecret = "router-test-secret"
	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := auth.New(store, logger, cfg)
	noteSvc := note.New(store, logger)
	return NewRouter(logger, authSvc, noteSvc, "", nil)
}

func registerUser(t *testing.T, router *Router, email, password string) {
	t.Helper()
	body := fmt.Sprintf(`{"email": %q, "password": %q, "full_name": "Test User"}`, email, password)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: unexpected status %d: %s", email, rec.Code, rec.Body.String())
	}
}

func loginUser(t *testing.T, router *Router, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email": %q, "password": %q}`, email, password)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: unexpected status %d: %s", email, rec.Code, rec.Body.String())
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if payload.TokenType != "bearer" {
		t.Fatalf("unexpected token type: %q", payload.TokenType)
	}
	return payload.AccessToken
}

func createNote(t *testing.T, router *Router, token, title, content string) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"title": %q, "content": %q}`, title, content)
	req := httptest.NewRequest(http.MethodPost, "/notes", bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create note: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode note response: %v", err)
	}
	return payload.ID
}

func TestRegisterReturnsUserWithoutDigest(t *testing.T) {
	router := newTestRouter()
	apitest.New().
		Handler(router).
		Post("/auth/register").
		JSON(`{"email": "a@x.com", "password": "pw1", "full_name": "Ada"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.email", "a@x.com")).
		Assert(jsonpath.Equal("$.full_name", "Ada")).
		Assert(jsonpath.NotPresent("$.hashed_password")).
		End()
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	apitest.New().
		Handler(router).
		Post("/auth/register").
		JSON(`{"email": "a@x.com", "password": "pw2"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal("$.error", "email already registered")).
		End()
}

func TestRegisterRejectsBadBody(t *testing.T) {
	router := newTestRouter()
	apitest.New().
		Handler(router).
		Post("/auth/register").
		Body(`{not json`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
	apitest.New().
		Handler(router).
		Post("/auth/register").
		JSON(`{"email": "", "password": "pw1"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestLoginBadCredentials(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")

	// Wrong password and unknown email must be indistinguishable.
	for _, body := range []string{
		`{"email": "a@x.com", "password": "wrong"}`,
		`{"email": "nobody@x.com", "password": "pw1"}`,
	} {
		apitest.New().
			Handler(router).
			Post("/auth/login").
			JSON(body).
			Expect(t).
			Status(http.StatusUnauthorized).
			Assert(jsonpath.Equal("$.error", "incorrect credentials")).
			End()
	}
}

func TestUsersMeRequiresAuth(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	token := loginUser(t, router, "a@x.com", "pw1")

	apitest.New().
		Handler(router).
		Get("/users/me").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(router).
		Get("/users/me").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.email", "a@x.com")).
		End()
}

func TestNotesRequireAuth(t *testing.T) {
	router := newTestRouter()
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/notes"},
		{http.MethodGet, "/notes"},
		{http.MethodGet, "/notes/1"},
		{http.MethodPut, "/notes/1"},
		{http.MethodDelete, "/notes/1"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestCreateNoteStampsOwner(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	token := loginUser(t, router, "a@x.com", "pw1")

	// A caller-supplied owner_id must be ignored.
	apitest.New().
		Handler(router).
		Post("/notes").
		Header("Authorization", "Bearer "+token).
		JSON(`{"title": "T", "content": "C", "owner_id": 999}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "T")).
		Assert(jsonpath.Equal("$.content", "C")).
		Assert(jsonpath.Equal("$.owner_id", float64(1))).
		End()
}

func TestListNotesFiltersByTitle(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	token := loginUser(t, router, "a@x.com", "pw1")
	createNote(t, router, token, "Groceries", "milk")
	createNote(t, router, token, "Work journal", "standup")

	apitest.New().
		Handler(router).
		Get("/notes").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 2)).
		End()

	// Filter is a case-insensitive substring match on title.
	apitest.New().
		Handler(router).
		Get("/notes").
		Query("q", "GROC").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 1)).
		Assert(jsonpath.Equal("$[0].title", "Groceries")).
		End()
}

func TestListNotesOnlyShowsOwn(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	registerUser(t, router, "b@x.com", "pw2")
	tokenA := loginUser(t, router, "a@x.com", "pw1")
	tokenB := loginUser(t, router, "b@x.com", "pw2")
	createNote(t, router, tokenA, "Mine", "secret")

	apitest.New().
		Handler(router).
		Get("/notes").
		Header("Authorization", "Bearer "+tokenB).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$", 0)).
		End()
}

func TestUpdateNote(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	token := loginUser(t, router, "a@x.com", "pw1")
	noteID := createNote(t, router, token, "Before", "old")

	apitest.New().
		Handler(router).
		Put(fmt.Sprintf("/notes/%d", noteID)).
		Header("Authorization", "Bearer "+token).
		JSON(`{"title": "After", "content": "new"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "After")).
		Assert(jsonpath.Equal("$.content", "new")).
		End()
}

func TestDeleteNote(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	token := loginUser(t, router, "a@x.com", "pw1")
	noteID := createNote(t, router, token, "Temp", "gone soon")

	apitest.New().
		Handler(router).
		Delete(fmt.Sprintf("/notes/%d", noteID)).
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.ok", true)).
		End()

	apitest.New().
		Handler(router).
		Get(fmt.Sprintf("/notes/%d", noteID)).
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestForeignNoteLooksMissing(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	registerUser(t, router, "b@x.com", "pw2")
	tokenA := loginUser(t, router, "a@x.com", "pw1")
	tokenB := loginUser(t, router, "b@x.com", "pw2")
	noteID := createNote(t, router, tokenA, "T", "C")

	missingID := noteID + 100
	for _, id := range []int64{noteID, missingID} {
		apitest.New().
			Handler(router).
			Get(fmt.Sprintf("/notes/%d", id)).
			Header("Authorization", "Bearer "+tokenB).
			Expect(t).
			Status(http.StatusNotFound).
			Assert(jsonpath.Equal("$.error", "note not found")).
			End()
		apitest.New().
			Handler(router).
			Put(fmt.Sprintf("/notes/%d", id)).
			Header("Authorization", "Bearer "+tokenB).
			JSON(`{"title": "X", "content": "Y"}`).
			Expect(t).
			Status(http.StatusNotFound).
			Assert(jsonpath.Equal("$.error", "note not found")).
			End()
		apitest.New().
			Handler(router).
			Delete(fmt.Sprintf("/notes/%d", id)).
			Header("Authorization", "Bearer "+tokenB).
			Expect(t).
			Status(http.StatusNotFound).
			Assert(jsonpath.Equal("$.error", "note not found")).
			End()
	}
}

func TestNoteIDMustBeNumeric(t *testing.T) {
	router := newTestRouter()
	registerUser(t, router, "a@x.com", "pw1")
	token := loginUser(t, router, "a@x.com", "pw1")

	apitest.New().
		Handler(router).
		Get("/notes/not-a-number").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter()
	apitest.New().
		Handler(router).
		Get("/auth/register").
		Expect(t).
		Status(http.StatusMethodNotAllowed).
		End()
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()
	apitest.New().
		Handler(router).
		Get("/healthz").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.status", "ok")).
		End()
}
