package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/dsp-console/domain"
	"github.com/fastygo/dsp-console/internal/tokeninfo"
	"github.com/fastygo/dsp-console/repository"
)

// Authenticator is the backend side of a login exchange.
type Authenticator interface {
	// Authenticate trades username and password for a bearer credential.
	Authenticate(ctx context.Context, username, password string) (string, error)
	// FetchIdentity resolves the identity behind credential.
	FetchIdentity(ctx context.Context, credential string) (*domain.Identity, error)
}

// Store is the single source of truth for who is logged in on this client.
// It keeps the in-memory session and its durable copy in step.
type Store struct {
	auth   Authenticator
	kv     repository.KeyValueStore
	keys   repository.SessionKeys
	logger *zap.Logger

	// writeMu serializes mutations so memory and storage never diverge.
	writeMu sync.Mutex
	mu      sync.RWMutex
	current domain.Session
}

func New(auth Authenticator, kv repository.KeyValueStore, keys repository.SessionKeys, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keys.Token == "" || keys.User == "" {
		keys = repository.NewSessionKeys("")
	}
	return &Store{
		auth:   auth,
		kv:     kv,
		keys:   keys,
		logger: logger,
	}
}

// Login authenticates against the backend and, only when both the token
// exchange and the identity lookup succeed, replaces the session and
// persists it. On any failure the current session is left as it was.
func (s *Store) Login(ctx context.Context, username, password string) error {
	credential, err := s.auth.Authenticate(ctx, username, password)
	if err != nil {
		return loginError(err)
	}
	if credential == "" {
		return domain.ErrAuthenticationFailed
	}

	identity, err := s.auth.FetchIdentity(ctx, credential)
	if err != nil {
		return loginError(err)
	}
	if identity == nil {
		return domain.ErrAuthenticationFailed
	}

	next := domain.Session{
		Credential: credential,
		Identity:   identity,
		ExpiresAt:  tokeninfo.ExpiresAt(credential),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persist(ctx, next); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "persist session", err)
	}
	s.set(next)

	s.logger.Info("logged in", zap.String("username", identity.Username), zap.String("role", identity.Role))
	return nil
}

// Logout clears the session. Memory is always cleared; the returned error
// only reports a failure to erase the durable copy. Calling Logout on an
// empty session is a no-op with the same postconditions.
func (s *Store) Logout(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	wasAuthenticated := s.IsAuthenticated()
	s.set(domain.Session{})

	if err := s.kv.Delete(ctx, s.keys.All()...); err != nil {
		s.logger.Warn("failed to erase persisted session", zap.Error(err))
		return err
	}
	if wasAuthenticated {
		s.logger.Info("logged out")
	}
	return nil
}

// SetIdentity replaces the identity record and keeps the credential. An
// identity is never stored without a credential, so the call is refused
// when nobody is logged in.
func (s *Store) SetIdentity(ctx context.Context, identity domain.Identity) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Snapshot()
	if !next.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	next.Identity = &identity

	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	if err := s.kv.Put(ctx, map[string][]byte{s.keys.User: payload}); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "persist identity", err)
	}
	s.set(next)
	return nil
}

// Restore loads the persisted session into memory without contacting the
// backend. Missing or malformed data leaves the session empty.
func (s *Store) Restore(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	restored, err := s.load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			s.logger.Debug("ignoring persisted session", zap.Error(err))
		}
		s.set(domain.Session{})
		return
	}
	s.set(restored)
	s.logger.Debug("session restored", zap.String("username", restored.Identity.Username))
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Credential returns the current bearer credential or "".
func (s *Store) Credential() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Credential
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAuthenticated()
}

// Identity returns a copy of the current identity, or nil.
func (s *Store) Identity() *domain.Identity {
	snap := s.Snapshot()
	return snap.Identity
}

// Expired reports whether the credential carries an expiry that has passed.
func (s *Store) Expired(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.IsAuthenticated() && s.current.IsExpired(now)
}

func (s *Store) set(next domain.Session) {
	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, sess domain.Session) error {
	user, err := json.Marshal(sess.Identity)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, map[string][]byte{
		s.keys.Token: []byte(sess.Credential),
		s.keys.User:  user,
	})
}

func (s *Store) load(ctx context.Context) (domain.Session, error) {
	token, err := s.kv.Get(ctx, s.keys.Token)
	if err != nil {
		return domain.Session{}, err
	}
	raw, err := s.kv.Get(ctx, s.keys.User)
	if err != nil {
		return domain.Session{}, err
	}
	if len(token) == 0 {
		return domain.Session{}, domain.ErrInvalidPayload
	}

	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return domain.Session{}, err
	}
	if identity.Username == "" {
		return domain.Session{}, domain.ErrInvalidPayload
	}

	credential := string(token)
	return domain.Session{
		Credential: credential,
		Identity:   &identity,
		ExpiresAt:  tokeninfo.ExpiresAt(credential),
	}, nil
}

// loginError classifies a failed exchange. Backend rejections become
// authentication failures that still carry the backend detail; transport
// errors are returned as they are.
func loginError(err error) error {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return domain.WrapError(domain.ErrCodeUnauthorized, domain.ErrAuthenticationFailed.Message, apiErr)
	}
	return err
}
