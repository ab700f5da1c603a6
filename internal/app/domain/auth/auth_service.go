package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/roamly/internal/app/domain/user"
	"github.com/FACorreiaa/roamly/internal/app/models"
	"github.com/FACorreiaa/roamly/internal/pkg/config"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
)

var _ Service = (*ServiceImpl)(nil)

// Session is the issued credential pair returned after register or login.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type Service interface {
	Register(ctx context.Context, username, email, password string) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
}

type ServiceImpl struct {
	logger *zap.Logger
	users  user.Repository
	cfg    *config.Config
}

func NewServiceImpl(users user.Repository, cfg *config.Config, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		users:  users,
		cfg:    cfg,
	}
}

// Register creates the account and signs the first token. Duplicate emails
// surface as ErrConflict from the unique index, not from a pre-check, so
// concurrent registrations cannot race past each other.
func (s *ServiceImpl) Register(ctx context.Context, username, email, password string) (*Session, error) {
	l := s.logger.With(zap.String("method", "Register"), zap.String("email", email))

	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("user.email", email),
	))
	defer span.End()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "password hashing failed")
		return nil, fmt.Errorf("could not process password: %w", err)
	}

	now := time.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, u); err != nil {
		l.Warn("registration failed", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		return nil, err
	}

	l.Info("registration successful", zap.String("user_id", u.ID))
	span.SetStatus(codes.Ok, "user registered")
	return s.issueSession(u)
}

// Login validates credentials and signs a token. A missing account and a
// wrong password produce the same answer.
func (s *ServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))

	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		l.Warn("login lookup failed")
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		l.Warn("password comparison failed", zap.String("user_id", u.ID))
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	l.Info("login successful", zap.String("user_id", u.ID))
	return s.issueSession(u)
}

func (s *ServiceImpl) issueSession(u *models.User) (*Session, error) {
	token, err := middleware.GenerateToken(middleware.JWTConfig{
		SecretKey:       s.cfg.JWT.SecretKey,
		TokenExpiration: s.cfg.JWT.TokenExpiration,
		Logger:          s.logger,
	}, u.ID, u.Email, u.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.cfg.JWT.TokenExpiration),
		User:      u,
	}, nil
}
