package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
)

// AccountService 最小身份服务：注册、校验密码、按用户名查找
type AccountService interface {
	SignUp(ctx context.Context, username, password string) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Lookup(ctx context.Context, username string) (*model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
}

type accountService struct {
	users repository.UserRepository
	cost  int
}

func NewAccountService(users repository.UserRepository) AccountService {
	return &accountService{users: users, cost: bcrypt.DefaultCost}
}

func (s *accountService) SignUp(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Username: username, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册时由唯一索引兜底
		if _, lookupErr := s.users.GetByUsername(ctx, username); lookupErr == nil {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *accountService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *accountService) Lookup(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *accountService) Get(ctx context.Context, id uint) (*model.User, error) {
	return s.users.Get(ctx, id)
}
