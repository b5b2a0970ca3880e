package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/apizfit/racekit/internal/api"
	"github.com/apizfit/racekit/internal/auth"
	"github.com/apizfit/racekit/internal/collection"
	"github.com/apizfit/racekit/internal/kit"
	"github.com/apizfit/racekit/internal/profile"
	"github.com/apizfit/racekit/internal/runner"
	"github.com/apizfit/racekit/internal/stats"
)

// store is an in-memory backing store implementing every repository
// interface the router needs, so full request flows run without Postgres.
type store struct {
	mu          sync.Mutex
	accounts    map[uuid.UUID]*auth.Account
	profiles    map[uuid.UUID]*profile.Profile
	sessions    map[uuid.UUID]*auth.Session
	runners     []runner.Runner
	kits        []kit.KitWithRunner
	collections []collection.KitCollection
	records     []collection.Record
}

func newStore() *store {
	return &store{
		accounts: make(map[uuid.UUID]*auth.Account),
		profiles: make(map[uuid.UUID]*profile.Profile),
		sessions: make(map[uuid.UUID]*auth.Session),
	}
}

// --- auth.AccountRepository ---

type accountStore struct{ s *store }

func (a *accountStore) CreateWithProfile(ctx context.Context, acc *auth.Account, fullName string, phone *string, role string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, existing := range a.s.accounts {
		if existing.Email == acc.Email {
			return auth.ErrDuplicateEmail
		}
	}
	acc.ID = uuid.New()
	acc.CreatedAt = time.Now().UTC()
	cp := *acc
	a.s.accounts[acc.ID] = &cp
	r := role
	s := profile.StatusActive
	a.s.profiles[acc.ID] = &profile.Profile{
		ID: uuid.New(), UserID: acc.ID, Email: acc.Email, FullName: fullName,
		Phone: phone, Role: &r, Status: &s,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	return nil
}

func (a *accountStore) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	for _, acc := range a.s.accounts {
		if acc.Email == email {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (a *accountStore) GetByID(ctx context.Context, id uuid.UUID) (*auth.Account, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	acc, ok := a.s.accounts[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

func (a *accountStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	acc, ok := a.s.accounts[id]
	if !ok {
		return auth.ErrAccountNotFound
	}
	acc.PasswordHash = hash
	return nil
}

func (a *accountStore) CountAll(ctx context.Context) (int, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return len(a.s.accounts), nil
}

func (a *accountStore) Delete(ctx context.Context, id uuid.UUID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	if _, ok := a.s.accounts[id]; !ok {
		return auth.ErrAccountNotFound
	}
	delete(a.s.accounts, id)
	return nil
}

// --- auth.SessionRepository ---

type sessionStore struct{ s *store }

func (ss *sessionStore) Create(ctx context.Context, sess *auth.Session) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	sess.ID = uuid.New()
	sess.CreatedAt = time.Now().UTC()
	cp := *sess
	ss.s.sessions[sess.ID] = &cp
	return nil
}

func (ss *sessionStore) FindByPrefix(ctx context.Context, prefix string) ([]auth.Session, error) {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	var out []auth.Session
	for _, sess := range ss.s.sessions {
		if sess.TokenPrefix == prefix && sess.RevokedAt == nil && sess.ExpiresAt.After(time.Now()) {
			out = append(out, *sess)
		}
	}
	return out, nil
}

func (ss *sessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	sess, ok := ss.s.sessions[id]
	if !ok {
		return auth.ErrSessionNotFound
	}
	now := time.Now().UTC()
	sess.RevokedAt = &now
	return nil
}

func (ss *sessionStore) RevokeAllForAccount(ctx context.Context, accountID, exceptID uuid.UUID) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()
	now := time.Now().UTC()
	for _, sess := range ss.s.sessions {
		if sess.AccountID == accountID && sess.ID != exceptID && sess.RevokedAt == nil {
			sess.RevokedAt = &now
		}
	}
	return nil
}

// --- profile.Repository ---

type profileStore struct{ s *store }

func (p *profileStore) List(ctx context.Context) ([]profile.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := make([]profile.Profile, 0, len(p.s.profiles))
	for _, pr := range p.s.profiles {
		out = append(out, *pr)
	}
	return out, nil
}

func (p *profileStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	pr, ok := p.s.profiles[userID]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	cp := *pr
	return &cp, nil
}

func (p *profileStore) SetStatus(ctx context.Context, userID uuid.UUID, status string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	pr, ok := p.s.profiles[userID]
	if !ok {
		return profile.ErrProfileNotFound
	}
	st := status
	pr.Status = &st
	return nil
}

func (p *profileStore) Delete(ctx context.Context, userID uuid.UUID) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.profiles[userID]; !ok {
		return profile.ErrProfileNotFound
	}
	delete(p.s.profiles, userID)
	return nil
}

// --- runner.Repository ---

type runnerStore struct{ s *store }

func (r *runnerStore) Create(ctx context.Context, rn *runner.Runner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rn.ID = uuid.New()
	if rn.RegistrationDate.IsZero() {
		rn.RegistrationDate = time.Now().UTC()
	}
	rn.CreatedAt = time.Now().UTC()
	rn.UpdatedAt = rn.CreatedAt
	r.s.runners = append(r.s.runners, *rn)
	return nil
}

func (r *runnerStore) GetByID(ctx context.Context, id uuid.UUID) (*runner.Runner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.runners {
		if r.s.runners[i].ID == id {
			cp := r.s.runners[i]
			return &cp, nil
		}
	}
	return nil, runner.ErrRunnerNotFound
}

func (r *runnerStore) List(ctx context.Context) ([]runner.Runner, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]runner.Runner, len(r.s.runners))
	copy(out, r.s.runners)
	return out, nil
}

func (r *runnerStore) Count(ctx context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.runners), nil
}

// --- kit.Repository ---

type kitStore struct{ s *store }

func (k *kitStore) CreateBatch(ctx context.Context, kits []kit.RaceKit) (int, error) {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	for i := range kits {
		rk := kits[i]
		rk.ID = uuid.New()
		if rk.Status == "" {
			rk.Status = kit.StatusPending
		}
		rk.CreatedAt = time.Now().UTC()
		rk.UpdatedAt = rk.CreatedAt

		var info kit.RunnerInfo
		for j := range k.s.runners {
			if k.s.runners[j].ID == rk.RunnerID {
				rn := &k.s.runners[j]
				info = kit.RunnerInfo{
					ID: rn.ID, ParticipantID: rn.ParticipantID, FullName: rn.FullName,
					BibNumber: rn.BibNumber, Category: rn.Category, RaceDistance: rn.RaceDistance,
				}
			}
		}
		k.s.kits = append(k.s.kits, kit.KitWithRunner{RaceKit: rk, Runner: info})
	}
	return len(kits), nil
}

func (k *kitStore) GetByID(ctx context.Context, id uuid.UUID) (*kit.RaceKit, error) {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	for i := range k.s.kits {
		if k.s.kits[i].ID == id {
			cp := k.s.kits[i].RaceKit
			return &cp, nil
		}
	}
	return nil, kit.ErrKitNotFound
}

func (k *kitStore) ListWithRunners(ctx context.Context) ([]kit.KitWithRunner, error) {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	out := make([]kit.KitWithRunner, len(k.s.kits))
	copy(out, k.s.kits)
	return out, nil
}

func (k *kitStore) CountByStatus(ctx context.Context) (*kit.StatusCounts, error) {
	k.s.mu.Lock()
	defer k.s.mu.Unlock()
	var counts kit.StatusCounts
	for i := range k.s.kits {
		if k.s.kits[i].Status == kit.StatusCollected {
			counts.Collected++
		} else {
			counts.Pending++
		}
	}
	return &counts, nil
}

// --- collection.Repository ---

type collectionStore struct{ s *store }

func (c *collectionStore) Collect(ctx context.Context, req *collection.CollectRequest) (*collection.KitCollection, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	var target *kit.KitWithRunner
	for i := range c.s.kits {
		if c.s.kits[i].ID == req.RaceKitID {
			target = &c.s.kits[i]
		}
	}
	if target == nil {
		return nil, collection.ErrKitNotFound
	}
	if target.Status != kit.StatusPending {
		return nil, collection.ErrAlreadyCollected
	}
	target.Status = kit.StatusCollected
	target.UpdatedAt = time.Now().UTC()

	kc := collection.KitCollection{
		ID:                uuid.New(),
		RaceKitID:         req.RaceKitID,
		CollectedByUserID: req.CollectedByUserID,
		CollectionType:    req.CollectionType,
		Notes:             req.Notes,
		CollectedAt:       time.Now().UTC(),
		CreatedAt:         time.Now().UTC(),
	}

	rec := collection.Record{
		KitNumber:       target.KitNumber,
		RunnerName:      target.Runner.FullName,
		RunnerBibNumber: target.Runner.BibNumber,
		CollectionType:  req.CollectionType,
		Notes:           req.Notes,
		CollectedAt:     kc.CollectedAt,
	}
	if acc, ok := c.s.accounts[req.CollectedByUserID]; ok {
		rec.CollectorEmail = acc.Email
	}
	if req.Representative != nil {
		req.Representative.ID = uuid.New()
		repID := req.Representative.ID
		kc.RepresentativeID = &repID
		rec.RepresentativeName = &req.Representative.FullName
		rec.RepresentativeID = &req.Representative.IDNumber
		rec.Relationship = req.Representative.Relationship
	}

	c.s.collections = append(c.s.collections, kc)
	c.s.records = append(c.s.records, rec)
	return &kc, nil
}

func (c *collectionStore) ListRecords(ctx context.Context) ([]collection.Record, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	out := make([]collection.Record, len(c.s.records))
	copy(out, c.s.records)
	return out, nil
}

// --- stats.Repository ---

type statsStore struct{ s *store }

func (st *statsStore) Summary(ctx context.Context) (*stats.Summary, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	summary := stats.Summary{TotalRunners: len(st.s.runners)}
	for i := range st.s.kits {
		if st.s.kits[i].Status == kit.StatusCollected {
			summary.CollectedKits++
		} else {
			summary.PendingKits++
		}
	}
	return &summary, nil
}

// --- server fixture ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error {
	return m.err
}

type testServer struct {
	baseURL string
	srv     *http.Server
	store   *store
	svc     *auth.Service
}

// startTestServer wires a real auth service and router over the in-memory
// store and serves it on a random port.
func startTestServer(t *testing.T, pinger *mockDBPinger, version string) *testServer {
	t.Helper()

	s := newStore()
	accounts := &accountStore{s: s}
	sessions := &sessionStore{s: s}
	profiles := &profileStore{s: s}

	svc := auth.NewService(accounts, sessions, profiles,
		bcrypt.MinCost, time.Hour, "integration-reset-secret", 30*time.Minute)

	router := api.NewRouter(api.RouterDeps{
		DBPinger:       pinger,
		Version:        version,
		AuthService:    svc,
		AccountRepo:    accounts,
		ProfileRepo:    profiles,
		RunnerRepo:     &runnerStore{s: s},
		KitRepo:        &kitStore{s: s},
		CollectionRepo: &collectionStore{s: s},
		StatsRepo:      &statsStore{s: s},
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", listener.Addr().(*net.TCPAddr).Port)
	return &testServer{baseURL: baseURL, srv: srv, store: s, svc: svc}
}

func (ts *testServer) shutdown() {
	_ = ts.srv.Shutdown(context.Background())
}

// doJSON issues a request with an optional bearer token and JSON body, and
// decodes the response envelope.
func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	if len(raw) == 0 {
		return resp.StatusCode, nil
	}

	var env map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &env), "response body: %s", string(raw))
	return resp.StatusCode, env
}

// signUpUser registers a fresh account through the API and returns its token.
func signUpUser(t *testing.T, ts *testServer, email, password, fullName string) string {
	t.Helper()

	status, env := doJSON(t, http.MethodPost, ts.baseURL+"/auth/signup", "", map[string]any{
		"email":    email,
		"password": password,
		"fullName": fullName,
	})
	require.Equal(t, http.StatusCreated, status)

	data := env["data"].(map[string]interface{})
	return data["token"].(string)
}

// promote changes the role on the profile of the given account email.
func promote(t *testing.T, ts *testServer, email, role string) {
	t.Helper()

	ts.store.mu.Lock()
	defer ts.store.mu.Unlock()
	for _, p := range ts.store.profiles {
		if p.Email == email {
			r := role
			p.Role = &r
			return
		}
	}
	t.Fatalf("no profile with email %s", email)
}
