package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Chanjeong/walkman/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sessions live in the token cookie for 7 days.
const TokenTTL = 7 * 24 * time.Hour

const bcryptCost = 12

var (
	ErrInvalidEmail       = errors.New("올바른 이메일을 입력해주세요")
	ErrShortPassword      = errors.New("비밀번호는 최소 6자 이상이어야 합니다")
	ErrEmailTaken         = errors.New("이미 사용 중인 이메일입니다")
	ErrInvalidCredentials = errors.New("이메일 또는 비밀번호가 올바르지 않습니다")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func NewService(secret string, querier db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     querier,
	}
}

func (s *Service) Register(ctx context.Context, req SignupRequest) (User, string, error) {
	if !emailPattern.MatchString(req.Email) {
		return User{}, "", ErrInvalidEmail
	}
	if len(req.Password) < 6 {
		return User{}, "", ErrShortPassword
	}

	var taken bool
	if err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`, req.Email).Scan(&taken); err != nil {
		return User{}, "", err
	}
	if taken {
		return User{}, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return User{}, "", err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, user.ID, user.Email, user.PasswordHash, user.Name)
	if err := row.Scan(&user.CreatedAt); err != nil {
		return User{}, "", err
	}

	token, err := s.SignToken(user.ID, user.Email)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (User, string, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, COALESCE(name,''), created_at
		FROM users WHERE email = $1
	`, req.Email)

	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.CreatedAt); err != nil {
		// same message whether the email or the password is wrong
		return User{}, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.SignToken(user.ID, user.Email)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *Service) SignToken(userID, email string) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}
