package service

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/auth"
	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/user"
	"github.com/example/gadgetcave/internal/repository/store"
)

var indianMobile = regexp.MustCompile(`^[6-9]\d{9}$`)

const minPasswordLen = 8

// RegisterInput 注册表单
type RegisterInput struct {
	Username  string `json:"username"`
	Phone     string `json:"phone_number"`
	Password  string `json:"password1"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Session 登录结果
type Session struct {
	Token  string      `json:"token"`
	Claims *auth.Claims `json:"-"`
	User   *user.User  `json:"user"`
}

type UserService struct {
	repo    user.Repository
	jwt     *config.JWTConfig
	revoked *auth.Revocations
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig, revoked *auth.Revocations) *UserService {
	return &UserService{repo: repo, jwt: jwt, revoked: revoked}
}

// HashPassword bcrypt 哈希
func HashPassword(raw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (in *RegisterInput) validate() *ValidationError {
	fields := map[string]string{}
	in.Username = strings.TrimSpace(in.Username)
	in.Phone = strings.TrimSpace(in.Phone)
	switch {
	case in.Username == "":
		fields["username"] = "This field is required."
	case len(in.Username) > 150:
		fields["username"] = "Ensure this value has at most 150 characters."
	}
	if in.Phone != "" && !indianMobile.MatchString(in.Phone) {
		fields["phone_number"] = "Enter a valid 10-digit Indian mobile number."
	}
	switch {
	case in.Password == "":
		fields["password1"] = "This field is required."
	case in.Password != in.Password2:
		fields["password2"] = "The two password fields didn't match."
	case len(in.Password) < minPasswordLen:
		fields["password2"] = "This password is too short. It must contain at least 8 characters."
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// Register 注册并直接登录
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if verr := in.validate(); verr != nil {
		return nil, verr
	}
	if in.Phone != "" {
		exists, err := s.repo.ExistsByPhone(ctx, in.Phone)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &ValidationError{Fields: map[string]string{"phone_number": ErrPhoneTaken.Error()}}
		}
	}
	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, &ValidationError{Fields: map[string]string{"username": ErrUsernameTaken.Error()}}
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		Username:  in.Username,
		Password:  hash,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
	}
	if in.Phone != "" {
		phone := in.Phone
		u.Phone = &phone
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// 并发注册时由唯一索引兜底
		if store.IsDuplicate(err) {
			return nil, &ValidationError{Fields: map[string]string{"username": "Username or phone number is already registered."}}
		}
		return nil, err
	}
	zap.L().Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	return s.issue(u)
}

// Login 登录并返回 JWT
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Authenticate 校验用户名密码，后台会话登录使用
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	sess, err := s.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return sess.User, nil
}

// Logout 作废令牌
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.revoked.Revoke(ctx, claims)
}

func (s *UserService) Get(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

func (s *UserService) issue(u *user.User) (*Session, error) {
	token, claims, err := auth.GenerateToken(s.jwt, u.ID, u.Username, u.IsStaff)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Claims: claims, User: u}, nil
}
