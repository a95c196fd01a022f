package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/example/tablohm/internal/persistence"
)

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher func(password string) (string, error)

// UserService manages operator accounts.
type UserService struct {
	users        persistence.UserRepository
	hashPassword PasswordHasher
	idGenerator  func() string
	logger       *slog.Logger
}

// NewUserService constructs a user service.
func NewUserService(users persistence.UserRepository, hash PasswordHasher, idGenerator func() string) *UserService {
	return NewUserServiceWithLogger(users, hash, idGenerator, nil)
}

// NewUserServiceWithLogger constructs a user service with a specified logger.
func NewUserServiceWithLogger(users persistence.UserRepository, hash PasswordHasher, idGenerator func() string, logger *slog.Logger) *UserService {
	if hash == nil {
		hash = func(password string) (string, error) {
			return CreatePasswordHash(password, DefaultArgon2idParams)
		}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &UserService{users: users, hashPassword: hash, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// Create adds an operator account for administrators.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (user User, err error) {
	if s == nil {
		err = fmt.Errorf("UserService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateUser", "principal_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	username := strings.TrimSpace(params.Username)
	vErr := &ValidationError{}
	if username == "" {
		vErr.add("username", "Benutzername ist erforderlich.")
	}
	if utf8.RuneCountInString(params.Password) < 8 {
		vErr.add("password", "Passwort muss mindestens 8 Zeichen lang sein.")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	hash, hashErr := s.hashPassword(params.Password)
	if hashErr != nil {
		err = hashErr
		return
	}

	record := persistence.User{
		ID:           s.idGenerator(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      params.IsAdmin,
	}
	if createErr := s.users.CreateUser(ctx, record); createErr != nil {
		err = mapEventRepoError(createErr)
		return
	}
	user = userFromRecord(record)
	return
}

// List returns every operator account for administrators.
func (s *UserService) List(ctx context.Context, principal Principal) ([]User, error) {
	if !principal.IsAdmin {
		return nil, ErrUnauthorized
	}
	records, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	users := make([]User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

// Delete removes an operator account for administrators. Self-deletion is
// rejected so the last admin cannot lock everyone out mid-session.
func (s *UserService) Delete(ctx context.Context, params DeleteUserParams) (err error) {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteUser",
		"principal_id", params.Principal.UserID,
		"user_id", params.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete user", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "user deleted")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if params.Principal.UserID == params.UserID {
		vErr := &ValidationError{}
		vErr.add("userId", "Das eigene Konto kann nicht gelöscht werden.")
		err = vErr
		return
	}
	err = mapEventRepoError(s.users.DeleteUser(ctx, params.UserID))
	return
}

// EnsureAdmin creates the initial admin account when no users exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) error {
	existing, err := s.users.ListUsers(ctx)
	if err != nil {
		return mapEventRepoError(err)
	}
	if len(existing) > 0 {
		return nil
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	record := persistence.User{
		ID:           s.idGenerator(),
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      true,
	}
	if err := s.users.CreateUser(ctx, record); err != nil {
		return mapEventRepoError(err)
	}
	s.loggerWith(ctx, "EnsureAdmin").InfoContext(ctx, "initial admin account created", "username", username)
	return nil
}
