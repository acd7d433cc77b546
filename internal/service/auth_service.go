package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushub/activity-points-api/internal/models"
	appErrors "github.com/campushub/activity-points-api/pkg/errors"
)

type authStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	FindByUSN(ctx context.Context, usn string) (*models.Student, error)
	ExistsByUSN(ctx context.Context, usn string) (bool, error)
}

type authAdminRepository interface {
	Create(ctx context.Context, admin *models.Admin) error
	FindByAdminID(ctx context.Context, adminID string) (*models.Admin, error)
	ExistsByAdminID(ctx context.Context, adminID string) (bool, error)
}

// rosterInvalidator drops cached roster projections after a signup.
type rosterInvalidator interface {
	InvalidateRoster(ctx context.Context) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret      string
	TokenExpiry      time.Duration
	Issuer           string
	BootstrapAdminID string
	BootstrapPasskey string
}

// adminCredentialStrategy resolves admin credentials against one backing
// source. Strategies are consulted in a fixed order; the first match wins.
type adminCredentialStrategy interface {
	Resolve(ctx context.Context, adminID, passkey string) (*models.Admin, bool, error)
}

// storedAdminStrategy checks provisioned admin accounts in the record store.
type storedAdminStrategy struct {
	repo authAdminRepository
}

func (s storedAdminStrategy) Resolve(ctx context.Context, adminID, passkey string) (*models.Admin, bool, error) {
	admin, err := s.repo.FindByAdminID(ctx, adminID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lookup admin: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PassHash), []byte(passkey)) != nil {
		return nil, false, nil
	}
	return admin, true, nil
}

// bootstrapAdminStrategy checks the static configuration credentials. It
// exists so the first operator can log in before any admin row is stored.
type bootstrapAdminStrategy struct {
	adminID string
	passkey string
}

func (s bootstrapAdminStrategy) Resolve(_ context.Context, adminID, passkey string) (*models.Admin, bool, error) {
	if s.adminID == "" || s.passkey == "" {
		return nil, false, nil
	}
	if adminID != s.adminID || passkey != s.passkey {
		return nil, false, nil
	}
	return &models.Admin{AdminID: s.adminID, Name: s.adminID}, true, nil
}

// AuthService provides signup, login, and token use cases for students and
// admins.
type AuthService struct {
	students   authStudentRepository
	admins     authAdminRepository
	roster     rosterInvalidator
	strategies []adminCredentialStrategy
	validator  *validator.Validate
	logger     *zap.Logger
	config     AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students authStudentRepository, admins authAdminRepository, roster rosterInvalidator, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		students: students,
		admins:   admins,
		roster:   roster,
		strategies: []adminCredentialStrategy{
			storedAdminStrategy{repo: admins},
			bootstrapAdminStrategy{adminID: config.BootstrapAdminID, passkey: config.BootstrapPasskey},
		},
		validator: validate,
		logger:    logger,
		config:    config,
	}
}

// Signup registers a new student account. USNs are unique; students are
// immutable once created.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}

	exists, err := s.students.ExistsByUSN(ctx, req.USN)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check usn")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "USN already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		USN:          req.USN,
		Name:         req.Name,
		College:      req.College,
		PasswordHash: string(hash),
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	if s.roster != nil {
		if err := s.roster.InvalidateRoster(ctx); err != nil {
			s.logger.Warn("failed to invalidate roster cache", zap.Error(err))
		}
	}

	return student, nil
}

// Login authenticates a student and returns an issued token. Unknown USN and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	student, err := s.students.FindByUSN(ctx, req.USN)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid USN or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}

	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid USN or password")
	}

	return s.issueToken(student.USN, student.Name, models.RoleStudent)
}

// AdminLogin authenticates an admin through the ordered credential
// strategies: stored account first, bootstrap configuration second.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin login payload")
	}

	for _, strategy := range s.strategies {
		admin, ok, err := strategy.Resolve(ctx, req.AdminID, req.Passkey)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admin credentials")
		}
		if ok {
			return s.issueToken(admin.AdminID, admin.Name, models.RoleAdmin)
		}
	}

	return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid admin credentials")
}

// CreateAdmin provisions a new admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name, admin_id and passkey are required")
	}

	exists, err := s.admins.ExistsByAdminID(ctx, req.AdminID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin id")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Admin ID already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Passkey), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash passkey")
	}

	admin := &models.Admin{
		AdminID:  req.AdminID,
		Name:     req.Name,
		PassHash: string(hash),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin")
	}

	return admin, nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueToken(userID, name string, role models.UserRole) (*models.LoginResponse, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.TokenExpiry)
	claims := &models.JWTClaims{
		UserID: userID,
		Name:   name,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		UserID:      userID,
		Name:        name,
		Role:        role,
	}, nil
}
