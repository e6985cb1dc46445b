package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/config"
	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	"github.com/skilllink/marketplace/internal/persistence"
	"github.com/skilllink/marketplace/internal/repository"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

const defaultHourlyRate = 20

// AuthService coordinates signup, login and the persisted session pointer.
type AuthService struct {
	store           *persistence.Store
	users           repository.UserRepository
	tokenMgr        *auth.TokenManager
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	bcryptCost      int
	verifyPasswords bool
	signupBonus     int64
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	Store      *persistence.Store
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// SignupInput describes a new account. Worker fields are ignored for seekers.
type SignupInput struct {
	Name       string
	Email      string
	Password   string
	Role       domain.Role
	Category   string
	HourlyRate int64
	Bio        string
}

// AuthResult is returned by Login and Signup.
type AuthResult struct {
	User    domain.User
	Session domain.Session
	Token   domain.Token
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		store:           deps.Store,
		users:           deps.UserRepo,
		tokenMgr:        tokens,
		dispatcher:      deps.Dispatcher,
		logger:          logger,
		bcryptCost:      cfg.Auth.BcryptCost,
		verifyPasswords: cfg.Auth.VerifyPasswords,
		signupBonus:     cfg.Auth.SignupBonus,
	}
}

// Login matches email (case-insensitively) and role. The password is only
// checked when verification is enabled.
func (s *AuthService) Login(ctx context.Context, email, password string, role domain.Role) (*AuthResult, error) {
	user, err := s.users.FindByEmailAndRole(ctx, email, role)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewAuthenticationFailed("Invalid email or role. Check if you signed up correctly.")
	}
	if err != nil {
		return nil, err
	}
	if s.verifyPasswords {
		if user.Password == "" || auth.ComparePassword(user.Password, password) != nil {
			return nil, apperrors.NewAuthenticationFailed("invalid credentials")
		}
	}

	if err := s.store.SetSessionUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.result(*user)
}

// Signup validates input, stores the account and signs it in. Emails are not
// checked for uniqueness.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	user, err := s.newUser(input)
	if err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	if err := s.store.SetSessionUser(ctx, &user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserSignedUp, "", events.ActorFor(domain.SessionFor(user)), []string{user.ID},
		events.UserSignedUpPayload{Name: user.Name, Role: user.Role, Category: user.Category}))
	return s.result(user)
}

// Logout clears the session pointer.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.store.SetSessionUser(ctx, nil)
}

// CurrentSession returns the signed-in identity from the session pointer.
func (s *AuthService) CurrentSession(ctx context.Context) (domain.Session, error) {
	u, err := s.store.SessionUser(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if u == nil {
		return domain.Session{}, apperrors.NewAuthenticationFailed("not logged in")
	}
	return domain.SessionFor(*u), nil
}

func (s *AuthService) result(u domain.User) (*AuthResult, error) {
	session := domain.SessionFor(u)
	token, err := s.tokenMgr.GenerateToken(session)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u.Public(), Session: session, Token: token}, nil
}

func (s *AuthService) newUser(input SignupInput) (domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return domain.User{}, apperrors.NewValidationError("Please fill in all required fields.", map[string]any{"missing": missing})
	}
	if !input.Role.Valid() {
		return domain.User{}, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     input.Role,
		Balance:  s.signupBonus,
	}
	if input.Role != domain.RoleWorker {
		return user, nil
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.Categories()[0]
	}
	if !domain.IsCategory(category) {
		return domain.User{}, apperrors.NewValidationError("unknown category", map[string]any{"category": category})
	}
	rate := input.HourlyRate
	if rate == 0 {
		rate = defaultHourlyRate
	}
	if rate < 0 {
		return domain.User{}, apperrors.NewValidationError("hourly rate must be positive", map[string]any{"hourlyRate": rate})
	}

	user.Category = category
	user.HourlyRate = rate
	user.Bio = strings.TrimSpace(input.Bio)
	user.Skills = []string{category}
	user.IsAvailable = true
	user.Reviews = []domain.Review{}
	return user, nil
}
