package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"skyhub/internal/domain"
	"skyhub/internal/models"
	"skyhub/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrEmailTaken = errors.New("an account with this email already exists")

// UserStore is the demo account registry. Accounts live under the
// skyHubUsers key; the current session under skyHubUser. There is no real
// credential check, matching the original's demo login.
type UserStore struct {
	mu        sync.RWMutex
	users     []models.User
	snapshots domain.SnapshotStore
	logger    zerolog.Logger
}

func NewUserStore(ctx context.Context, snapshots domain.SnapshotStore, logger zerolog.Logger) *UserStore {
	s := &UserStore{snapshots: snapshots, logger: logger}

	if snapshots != nil {
		if data, err := snapshots.Load(ctx, models.KeyUsers); err == nil {
			if jsonErr := json.Unmarshal(data, &s.users); jsonErr != nil {
				s.logger.Warn().Err(jsonErr).Msg("corrupt users snapshot, starting empty")
				s.users = nil
			}
		} else if err != storage.ErrNoSnapshot {
			s.logger.Warn().Err(err).Msg("load users snapshot failed, starting empty")
		}
	}
	return s
}

// Register creates an account. The email must be unused.
func (s *UserStore) Register(ctx context.Context, name, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return models.User{}, ErrEmailTaken
		}
	}

	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
	}
	s.users = append(s.users, user)
	s.persist(ctx)
	s.saveSession(ctx, user)
	return user, nil
}

// Login looks an account up by email. The demo keeps the original's
// behavior: a known email is enough.
func (s *UserStore) Login(ctx context.Context, email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			s.saveSession(ctx, u)
			return u, true
		}
	}
	return models.User{}, false
}

// Logout clears the stored session.
func (s *UserStore) Logout(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, models.KeyCurrentUser); err != nil {
		s.logger.Warn().Err(err).Msg("clear session snapshot failed")
	}
}

func (s *UserStore) persist(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if data, err := json.Marshal(s.users); err == nil {
		if err := s.snapshots.Save(ctx, models.KeyUsers, data); err != nil {
			s.logger.Error().Err(err).Msg("save users snapshot failed")
		}
	}
}

func (s *UserStore) saveSession(ctx context.Context, user models.User) {
	if s.snapshots == nil {
		return
	}
	if data, err := json.Marshal(user); err == nil {
		if err := s.snapshots.Save(ctx, models.KeyCurrentUser, data); err != nil {
			s.logger.Warn().Err(err).Msg("save session snapshot failed")
		}
	}
}
