package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/agicotech/ForumApp/internal/auth"
	"github.com/agicotech/ForumApp/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Unique index names follow gorm's naming strategy: idx_<prefix>user_<column>.
// The prefix is deployment config, so duplicates are attributed by the column
// suffix alone.
const (
	idxUsernameSuffix = "_username"
	idxEmailSuffix    = "_email"
)

type RegisterOptions struct {
	Username string
	Email    string
	Password string
}

// UserService implements the account state transitions: register, login,
// change password and promote. Roles only ever increase; users are never
// deleted.
type UserService struct {
	userRepo     UserRepository
	tokenService *auth.TokenService
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) checkUserExist(ctx context.Context, username string, email string) error {
	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if existing != nil {
		if existing.Username == username {
			return ErrUsernameTaken
		}
		return ErrEmailRegistered
	}
	return nil
}

// mapDuplicateError translates a MySQL duplicate-key failure into the
// conflict error for the column that collided. Concurrent registrations
// racing past checkUserExist end up here; the unique index guarantees at
// most one of them succeeds. The message shape is
// "Duplicate entry '<value>' for key '<table>.<index>'"; only the key name
// is inspected so a value containing an index suffix cannot misattribute
// the conflict.
func mapDuplicateError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		_, key, found := strings.Cut(mysqlErr.Message, "for key ")
		if !found {
			return err
		}
		key = strings.Trim(key, "'")
		switch {
		case strings.HasSuffix(key, idxUsernameSuffix):
			return ErrUsernameTaken
		case strings.HasSuffix(key, idxEmailSuffix):
			return ErrEmailRegistered
		}
	}
	return err
}

func (s *UserService) Register(ctx context.Context, opts RegisterOptions) (*model.User, error) {
	if err := s.checkUserExist(ctx, opts.Username, opts.Email); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(opts.Password)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:     opts.Username,
		Email:        opts.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, mapDuplicateError(err)
	}
	return &user, nil
}

// Login verifies the credentials and issues an access token. Unknown
// username and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username string, password string) (*model.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.tokenService.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID uint, oldPassword string, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(oldPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, passwordHash)
}

// PromoteToAdmin raises the target's role to Admin. Promoting an existing
// admin succeeds without effect; there is no demotion operation.
func (s *UserService) PromoteToAdmin(ctx context.Context, targetID uint) (*model.User, error) {
	user, err := s.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role == model.RoleAdmin {
		return user, nil
	}
	if err := s.userRepo.UpdateRole(ctx, targetID, model.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = model.RoleAdmin
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.ListAll(ctx)
}

func NewUserService(userRepo UserRepository, tokenService *auth.TokenService) *UserService {
	return &UserService{
		userRepo:     userRepo,
		tokenService: tokenService,
	}
}
