package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/account"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/auth"
	"github.com/railmadad/portal/internal/metrics"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/util"
)

const (
	maxFailedLogins = 5
	lockoutWindow   = 15 * time.Minute
)

var (
	// ErrInvalidCredentials is returned for an unknown login or wrong password.
	ErrInvalidCredentials error = &apperr.Error{Kind: apperr.ErrAuth, Message: "Invalid email or password"}
	// ErrTooManyAttempts is returned while an account is locked out.
	ErrTooManyAttempts error = &apperr.Error{Kind: apperr.ErrAuth, Status: http.StatusTooManyRequests, Message: "Too many failed attempts. Try again later."}
	// ErrTokenRevoked is returned for tokens that were signed out.
	ErrTokenRevoked error = &apperr.Error{Kind: apperr.ErrAuth, Message: "Session has ended. Please sign in again."}
	// ErrOfficerKey is returned when an official signs up without the right key.
	ErrOfficerKey error = &apperr.Error{Kind: apperr.ErrAuthorization, Message: "Invalid officer signup key"}
)

type accountRepository interface {
	GetByLogin(ctx context.Context, login string) (repo.User, error)
	Create(ctx context.Context, in account.CreateInput) (repo.User, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// AuthService handles signup, login and token revocation.
type AuthService struct {
	repo       accountRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	officerKey string
}

// NewAuthService builds the service.
func NewAuthService(r accountRepository, redisClient redisCommander, jwtMgr *auth.JWTManager, officerKey string) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, officerKey: officerKey}
}

// JWT exposes the token manager to middleware.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	StationName string `json:"stationName,omitempty"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FullName    string `json:"fullName,omitempty"`
	UserCode    string `json:"userCode"`
}

// Login checks a password and issues an access token.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	attemptsKey := auth.LoginAttemptsKey(login)
	if n, err := s.redis.Get(ctx, attemptsKey).Int(); err == nil && n >= maxFailedLogins {
		metrics.Logins.WithLabelValues("locked").Inc()
		return nil, ErrTooManyAttempts
	}

	user, err := s.repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: unknown account")
			auth.VerifyDecoy(password)
			s.recordFailure(ctx, attemptsKey)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			log.Warn().Err(err).Int64("user", user.ID).Msg("login: verify password failed")
		}
		s.recordFailure(ctx, attemptsKey)
		return nil, ErrInvalidCredentials
	}
	_ = s.redis.Del(ctx, attemptsKey).Err()
	if auth.NeedsRehash(user.PasswordHash) {
		log.Info().Int64("user", user.ID).Msg("login: password hash uses old parameters")
	}

	station := ""
	if user.Station != nil {
		station = *user.Station
	}
	token, _, err := s.jwt.GenerateAccessToken(auth.Identity{
		Username: user.Email,
		Role:     user.Role,
		Station:  station,
		Name:     user.FullName,
	})
	if err != nil {
		return nil, err
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	log.Info().Int64("user", user.ID).Str("role", user.Role).Msg("login")
	return &LoginResult{
		Token:       token,
		Role:        user.Role,
		StationName: station,
		Email:       user.Email,
		Username:    user.Username,
		FullName:    user.FullName,
		UserCode:    user.UserCode,
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	metrics.Logins.WithLabelValues("failed").Inc()
	if err := s.redis.Incr(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Msg("login: count failure")
		return
	}
	_ = s.redis.Expire(ctx, key, lockoutWindow).Err()
}

// SignupInput is a self-service registration.
type SignupInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	StationName string `json:"stationName"`
	OfficerKey  string `json:"officerKey"`
}

// Signup registers a passenger, or an official holding the officer key.
// Super admins are never created this way.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (repo.User, error) {
	in.FullName = util.NormalizeName(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.StationName = util.NormalizeName(in.StationName)

	if in.FullName == "" {
		return repo.User{}, apperr.Validation("Full name is required")
	}
	if err := util.ValidateEmail(in.Email); err != nil {
		return repo.User{}, err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return repo.User{}, err
	}

	r := role.User
	if strings.TrimSpace(in.Role) != "" {
		parsed, err := role.Parse(in.Role)
		if err != nil {
			return repo.User{}, apperr.Validation("Unknown role %q", in.Role)
		}
		r = parsed
	}
	if r == role.SuperAdmin {
		return repo.User{}, apperr.Forbidden("Super admin accounts cannot be created by signup")
	}
	if r != role.User && subtle.ConstantTimeCompare([]byte(strings.TrimSpace(in.OfficerKey)), []byte(s.officerKey)) != 1 {
		return repo.User{}, ErrOfficerKey
	}
	if r.RequiresStation() && in.StationName == "" {
		return repo.User{}, apperr.Validation("Station name is required for %s accounts", r.Label())
	}
	var station *string
	if r.RequiresStation() {
		station = &in.StationName
	}

	return createAccount(ctx, s.repo, account.CreateInput{
		Username: in.Email,
		Email:    in.Email,
		FullName: in.FullName,
		Role:     r.String(),
		Station:  station,
	}, in.Password)
}

func createAccount(ctx context.Context, r accountRepository, in account.CreateInput, password string) (repo.User, error) {
	hash, err := auth.Hash(password)
	if err != nil {
		return repo.User{}, err
	}
	in.PasswordHash = hash
	user, err := r.Create(ctx, in)
	if errors.Is(err, repo.ErrConflict) {
		return repo.User{}, &apperr.Error{Kind: apperr.ErrValidation, Status: http.StatusConflict, Message: "An account with this email already exists", Err: err}
	}
	if err != nil {
		return repo.User{}, err
	}
	log.Info().Int64("user", user.ID).Str("role", user.Role).Msg("account created")
	return user, nil
}

// Authenticate validates a bearer token and rejects revoked ones.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwt.ParseAndValidate(token)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.ErrAuth, Message: "Invalid or expired token", Err: err}
	}
	err = s.redis.Get(ctx, auth.RevokedKey(claims.ID)).Err()
	switch {
	case errors.Is(err, redis.Nil):
		return claims, nil
	case err == nil:
		return nil, ErrTokenRevoked
	default:
		return nil, err
	}
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := claims.Remaining(time.Now())
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, auth.RevokedKey(claims.ID), "1", ttl).Err(); err != nil {
		return err
	}
	log.Info().Str("user", claims.Subject).Msg("logout")
	return nil
}
