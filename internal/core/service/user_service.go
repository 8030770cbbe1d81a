package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackdesk/iam-service/internal/core/domain"
	"github.com/stackdesk/iam-service/internal/core/ports"
)

// LoginThrottle bounds failed login attempts per account (Redis-backed in
// production). Store errors are treated as advisory: an unreachable throttle
// never locks out logins.
type LoginThrottle interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// UserService enforces user lifecycle invariants: unique emails, resolvable
// role references, hashed credentials, and the self-delete guard.
type UserService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	throttle LoginThrottle
	log      zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	throttle LoginThrottle,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		roles:    roles,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		log:      log,
	}
}

// Signup registers a new account under the current default role. A duplicate
// email is reported with a deliberately opaque error so the endpoint cannot
// be used to probe which addresses are registered.
func (s *UserService) Signup(ctx context.Context, in ports.SignupInput) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrSignupRejected
	}

	// Resolved at call time, never cached: a re-seeded default role must
	// take effect immediately.
	defaultRole, err := s.roles.FindDefault(ctx)
	if err != nil {
		return nil, fmt.Errorf("signup: resolve default role: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		RoleID:       defaultRole.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrSignupRejected
		}
		return nil, fmt.Errorf("signup: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password collapse into the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if s.throttle != nil {
		blocked, err := s.throttle.TooManyFailures(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, proceeding anyway")
		} else if blocked {
			return nil, domain.ErrLoginThrottled
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Compare(password, user.PasswordHash) {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	role, err := s.roles.FindByID(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("login: resolve role: %w", err)
	}
	if !role.Active {
		return nil, domain.ErrAccountDisabled
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &ports.LoginResult{UserID: user.ID, Token: token}, nil
}

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("login throttle record failed")
	}
}

// Create is the administrative variant of signup with an explicit role.
func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	if !domain.IsValidID(in.RoleID) {
		return nil, domain.ErrInvalidID
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		RoleID:       in.RoleID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("role_id", in.RoleID).Msg("user created")
	return created, nil
}

func (s *UserService) List(ctx context.Context, search string) ([]ports.UserWithRole, error) {
	return s.users.Search(ctx, search)
}

func (s *UserService) Get(ctx context.Context, id string) (*ports.UserWithRole, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	return s.users.FindWithRole(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*ports.UserWithRole, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}

	patch := ports.UserPatch{
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}

	if in.Password != nil {
		user, err := s.users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if s.hasher.Compare(*in.Password, user.PasswordHash) {
			return nil, domain.ErrSamePassword
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update user: hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	if in.Email != nil {
		other, err := s.users.FindByEmail(ctx, *in.Email)
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if other != nil && other.ID != id {
			return nil, domain.ErrEmailTaken
		}
		patch.Email = in.Email
	}

	if in.RoleID != nil {
		if !domain.IsValidID(*in.RoleID) {
			return nil, domain.ErrInvalidID
		}
		patch.RoleID = in.RoleID
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", id).Msg("user updated")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, actorID, targetID string) error {
	if !domain.IsValidID(targetID) {
		return domain.ErrInvalidID
	}
	if actorID == targetID {
		return domain.ErrSelfDelete
	}

	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}

	s.log.Info().Str("user_id", targetID).Str("actor_id", actorID).Msg("user deleted")
	return nil
}

// BulkUpdateSame applies one patch to every listed user. The password, when
// present, is hashed once and shared by all matched rows; the write itself is
// a single store-level operation.
func (s *UserService) BulkUpdateSame(ctx context.Context, ids []string, data ports.BulkUserData) error {
	if len(ids) == 0 {
		return domain.ErrNoUsersGiven
	}
	for _, id := range ids {
		if !domain.IsValidID(id) {
			return domain.ErrInvalidID
		}
	}

	patch, err := s.bulkPatch(data)
	if err != nil {
		return err
	}

	matched, err := s.users.UpdateMany(ctx, ids, patch)
	if err != nil {
		return fmt.Errorf("bulk update: %w", err)
	}

	s.log.Info().Int("requested", len(ids)).Int64("matched", matched).Msg("users bulk updated")
	return nil
}

// BulkUpdateEach applies an independent patch per user. All ids are validated
// before any write: one malformed id rejects the whole batch. Rows are then
// written as one batch that is not atomic across rows.
func (s *UserService) BulkUpdateEach(ctx context.Context, updates []ports.BulkUserEntry) error {
	if len(updates) == 0 {
		return domain.ErrNoUsersGiven
	}
	for _, u := range updates {
		if !domain.IsValidID(u.ID) {
			return domain.ErrInvalidID
		}
		if u.Data.RoleID != nil && !domain.IsValidID(*u.Data.RoleID) {
			return domain.ErrInvalidID
		}
	}

	rows := make([]ports.BulkUserPatch, 0, len(updates))
	for _, u := range updates {
		patch, err := s.bulkPatch(u.Data)
		if err != nil {
			return err
		}
		rows = append(rows, ports.BulkUserPatch{ID: u.ID, Patch: patch})
	}

	if err := s.users.BulkUpdate(ctx, rows); err != nil {
		return fmt.Errorf("bulk update: %w", err)
	}

	s.log.Info().Int("rows", len(rows)).Msg("users bulk updated per row")
	return nil
}

func (s *UserService) bulkPatch(data ports.BulkUserData) (ports.UserPatch, error) {
	patch := ports.UserPatch{
		FirstName: data.FirstName,
		LastName:  data.LastName,
	}
	if data.RoleID != nil {
		if !domain.IsValidID(*data.RoleID) {
			return ports.UserPatch{}, domain.ErrInvalidID
		}
		patch.RoleID = data.RoleID
	}
	if data.Password != nil {
		hash, err := s.hasher.Hash(*data.Password)
		if err != nil {
			return ports.UserPatch{}, fmt.Errorf("bulk update: hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}
	return patch, nil
}

// CheckAccess reports whether the user's role grants module. This is raw set
// membership: unlike the request authorization gate it does not require the
// role to be the default one.
func (s *UserService) CheckAccess(ctx context.Context, userID string, module domain.AccessModule) (bool, error) {
	if !domain.IsValidID(userID) {
		return false, domain.ErrInvalidID
	}

	user, err := s.users.FindWithRole(ctx, userID)
	if err != nil {
		return false, err
	}

	return user.Role.HasModule(module), nil
}
