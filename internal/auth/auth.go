package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hanapbuhay/backend/internal/config"
	"github.com/hanapbuhay/backend/internal/geo"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service handles authentication operations
type Service struct {
	db     *pgxpool.Pool
	config *config.JWTConfig
}

// NewService creates a new auth service
func NewService(db *pgxpool.Pool, jwtCfg *config.JWTConfig) *Service {
	return &Service{
		db:     db,
		config: jwtCfg,
	}
}

// Claims represents JWT claims
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role" binding:"required,oneof=client worker"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AccountResponse represents an account response (without sensitive data)
type AccountResponse struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
}

// RegisterResponse carries the new account plus the continuation token the
// caller must present when creating their profile.
type RegisterResponse struct {
	Account           AccountResponse `json:"account"`
	ContinuationToken string          `json:"continuation_token"`
	Message           string          `json:"message"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Account AccountResponse `json:"account"`
	Tokens  TokenPair       `json:"tokens"`
}

// ProfileRequest represents a client or worker profile creation request
type ProfileRequest struct {
	ContinuationToken string    `json:"continuation_token" binding:"required"`
	FirstName         string    `json:"first_name" binding:"required"`
	MiddleName        *string   `json:"middle_name,omitempty"`
	LastName          string    `json:"last_name" binding:"required"`
	DateOfBirth       time.Time `json:"date_of_birth" binding:"required"`
	Sex               string    `json:"sex" binding:"required"`
	PhoneNumber       string    `json:"phone_number" binding:"required"`
	Address           string    `json:"address" binding:"required"`

	// Worker-only fields
	Skill           string `json:"skill,omitempty"`
	YearsExperience int    `json:"years_experience,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

// Register creates a new account and issues a profile continuation token
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var account models.Account
	err = s.db.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, role, is_active, created_at, last_login_at
	`, req.Email, passwordHash, req.Role).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.IsActive, &account.CreatedAt, &account.LastLoginAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	continuation, err := s.generateContinuationToken(&account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate continuation token: %w", err)
	}

	return &RegisterResponse{
		Account:           toAccountResponse(&account),
		ContinuationToken: continuation,
		Message:           "Registration successful. Complete your profile to continue.",
	}, nil
}

// Login authenticates an account and returns tokens
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	var account models.Account
	err := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, is_active, created_at, last_login_at
		FROM accounts WHERE email = $1
	`, req.Email).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.IsActive, &account.CreatedAt, &account.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Generic error to not reveal whether the email exists
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !VerifyPassword(req.Password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, ErrAccountDeactivated
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE accounts SET last_login_at = now() WHERE id = $1`, account.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	tokens, err := s.generateTokenPair(&account)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginResponse{
		Account: toAccountResponse(&account),
		Tokens:  *tokens,
	}, nil
}

// RefreshTokens generates new tokens from a valid refresh token
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.validateToken(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.Subject != "refresh" {
		return nil, ErrInvalidToken
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var account models.Account
	err = s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, is_active, created_at, last_login_at
		FROM accounts WHERE id = $1
	`, accountID).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.IsActive, &account.CreatedAt, &account.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !account.IsActive {
		return nil, ErrAccountDeactivated
	}

	// Token rotation
	return s.generateTokenPair(&account)
}

// CreateClientProfile consumes a continuation token and creates the 1:1
// client profile for the pending account.
func (s *Service) CreateClientProfile(ctx context.Context, req *ProfileRequest) (*models.ClientProfile, error) {
	account, err := s.resolveContinuation(ctx, req.ContinuationToken, models.RoleClient)
	if err != nil {
		return nil, err
	}

	var profile models.ClientProfile
	err = s.db.QueryRow(ctx, `
		INSERT INTO client_profiles
			(account_id, first_name, middle_name, last_name, email, date_of_birth, sex, phone_number, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, account_id, first_name, middle_name, last_name, email,
			date_of_birth, sex, phone_number, address
	`, account.ID, req.FirstName, req.MiddleName, req.LastName, account.Email,
		req.DateOfBirth, req.Sex, req.PhoneNumber, req.Address).Scan(
		&profile.ID, &profile.AccountID, &profile.FirstName, &profile.MiddleName,
		&profile.LastName, &profile.Email, &profile.DateOfBirth, &profile.Sex,
		&profile.PhoneNumber, &profile.Address,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create client profile: %w", err)
	}

	return &profile, nil
}

// CreateWorkerProfile consumes a continuation token and creates the 1:1
// worker profile. Coordinates are resolved from the address when the barangay
// is known; otherwise they stay unset and nearby matching uses the
// city-center fallback.
func (s *Service) CreateWorkerProfile(ctx context.Context, req *ProfileRequest) (*models.WorkerProfile, error) {
	account, err := s.resolveContinuation(ctx, req.ContinuationToken, models.RoleWorker)
	if err != nil {
		return nil, err
	}

	if req.Skill == "" {
		return nil, fmt.Errorf("skill is required for workers")
	}

	var lat, lng *float64
	if coord, ok := geo.CoordinatesForAddress(req.Address); ok {
		lat, lng = &coord.Lat, &coord.Lng
	}

	var profile models.WorkerProfile
	err = s.db.QueryRow(ctx, `
		INSERT INTO worker_profiles
			(account_id, first_name, middle_name, last_name, email, date_of_birth, sex,
			 phone_number, address, latitude, longitude, skill, years_experience, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, account_id, first_name, middle_name, last_name, email,
			date_of_birth, sex, phone_number, address, latitude, longitude,
			skill, years_experience, bio, completed_jobs, average_rating
	`, account.ID, req.FirstName, req.MiddleName, req.LastName, account.Email,
		req.DateOfBirth, req.Sex, req.PhoneNumber, req.Address, lat, lng,
		req.Skill, req.YearsExperience, req.Bio).Scan(
		&profile.ID, &profile.AccountID, &profile.FirstName, &profile.MiddleName,
		&profile.LastName, &profile.Email, &profile.DateOfBirth, &profile.Sex,
		&profile.PhoneNumber, &profile.Address, &profile.Latitude, &profile.Longitude,
		&profile.Skill, &profile.YearsExperience, &profile.Bio,
		&profile.CompletedJobs, &profile.AverageRating,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("failed to create worker profile: %w", err)
	}

	return &profile, nil
}

// resolveContinuation validates a continuation token and loads its account
func (s *Service) resolveContinuation(ctx context.Context, token string, want models.Role) (*models.Account, error) {
	claims, err := s.validateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Subject != "profile" {
		return nil, ErrInvalidToken
	}
	if models.Role(claims.Role) != want {
		return nil, ErrRoleMismatch
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	var account models.Account
	err = s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, role, is_active, created_at, last_login_at
		FROM accounts WHERE id = $1
	`, accountID).Scan(
		&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.IsActive, &account.CreatedAt, &account.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &account, nil
}

// generateTokenPair creates access and refresh tokens
func (s *Service) generateTokenPair(account *models.Account) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenExpiry)

	accessToken, err := s.signToken(account, "access", accessExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.signToken(account, "refresh", now.Add(s.config.RefreshTokenExpiry))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExpiry,
		TokenType:    "Bearer",
	}, nil
}

// generateContinuationToken creates the short-lived, single-purpose token
// that links registration to profile creation.
func (s *Service) generateContinuationToken(account *models.Account) (string, error) {
	return s.signToken(account, "profile", time.Now().Add(s.config.ContinuationExpiry))
}

func (s *Service) signToken(account *models.Account, subject string, expiry time.Time) (string, error) {
	claims := &Claims{
		AccountID: account.ID.String(),
		Role:      string(account.Role),
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        generateJTI(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", subject, err)
	}
	return signed, nil
}

// validateToken parses and validates a JWT token
func (s *Service) validateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// toAccountResponse converts an Account to AccountResponse
func toAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Email:     account.Email,
		Role:      account.Role,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt,
	}
}

// generateJTI generates a unique JWT ID
func generateJTI() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
