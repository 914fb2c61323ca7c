package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/shop-admin/internal/model"
	"github.com/iliyamo/shop-admin/internal/repository"
	"github.com/iliyamo/shop-admin/internal/utils"
)

// UserStore is the subset of the credential store the auth operations need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// AuthService implements register and login.
type AuthService struct {
	users  UserStore
	tokens *utils.TokenService
	cost   int

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the credential store and token service. cost is the
// bcrypt cost factor.
func NewAuthService(users UserStore, tokens *utils.TokenService, cost int) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: cost}
}

// RegisterInput carries the registration fields. Role is optional.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  model.Identity
	Token string
}

// Register creates a user and issues a token for it. An existing email or
// username yields repository.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return AuthResult{}, invalid("username, email and password are required")
	}
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if !model.ValidRole(role) {
		role = model.RoleUser
	}

	taken, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return AuthResult{}, fmt.Errorf("check existing user: %w", err)
	}
	if taken {
		return AuthResult{}, repository.ErrConflict
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return AuthResult{}, err
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	return s.issue(*u)
}

// Login checks email and password. Both an unknown email and a wrong
// password return ErrInvalidCredentials; the unknown-email path still pays
// for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return AuthResult{}, invalid("email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		utils.VerifyPassword(s.dummy(), password)
		return AuthResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return AuthResult{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u model.User) (AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u.Identity(), Token: tok}, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("timing-equalizer", s.cost)
	})
	return s.dummyHash
}
