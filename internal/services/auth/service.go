package auth

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 12 * time.Hour
	refreshTokenTTL = 14 * 24 * time.Hour
)

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
	Family   string `json:"family"`
	Class    string `json:"class"`
}

// ImportResult summarizes a bulk user import.
type ImportResult struct {
	CreatedCount int      `json:"created_count"`
	InvalidLines []string `json:"invalid_lines"`
}

// Service resolves principals: registration, login, token refresh and
// password management.
type Service interface {
	Register(input RegisterInput) (*models.User, error)
	Login(handle, password string) (*models.User, string, string, error)
	Refresh(refreshToken string) (string, error)
	Logout(refreshToken string) error
	ChangePassword(userID uint, oldPassword, newPassword, confirm string) error
	ResetPassword(handle, newPassword, confirm string) error
	BatchImport(r io.Reader) (*ImportResult, error)
}

type service struct {
	userRepo      repositories.UserRepository
	jwtSecret     string
	refreshSecret string
}

func NewService(userRepo repositories.UserRepository, jwtSecret, refreshSecret string) Service {
	return &service{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		refreshSecret: refreshSecret,
	}
}

func (s *service) Register(input RegisterInput) (*models.User, error) {
	if input.Handle == "" || input.Password == "" || input.Role == "" {
		return nil, errors.ErrMissingFields
	}
	if !models.KnownRole(input.Role) {
		return nil, errors.ErrUnknownRole
	}
	if _, err := s.userRepo.GetByHandle(input.Handle); err == nil {
		return nil, errors.ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Handle:   input.Handle,
		Password: string(hashed),
		Role:     input.Role,
		Family:   input.Family,
		Class:    input.Class,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *service) Login(handle, password string) (*models.User, string, string, error) {
	if handle == "" || password == "" {
		return nil, "", "", errors.ErrMissingFields
	}

	user, err := s.userRepo.GetByHandle(handle)
	if err != nil {
		return nil, "", "", errors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", "", errors.ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(&models.UserClaims{
		UserID: user.ID,
		Handle: user.Handle,
		Role:   user.Role,
	}, s.jwtSecret, accessTokenTTL)
	if err != nil {
		log.Printf("failed to generate access token: %v", err)
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.refreshSecret, refreshTokenTTL)
	if err != nil {
		return nil, "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.userRepo.CreateRefreshToken(&models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}); err != nil {
		return nil, "", "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) Refresh(refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errors.ErrMissingFields
	}

	stored, err := s.userRepo.GetRefreshToken(refreshToken)
	if err != nil {
		return "", errors.ErrInvalidToken
	}
	if time.Now().After(stored.ExpiresAt) {
		return "", errors.ErrInvalidToken
	}
	userID, err := utils.ParseRefreshToken(refreshToken, s.refreshSecret)
	if err != nil || userID != stored.UserID {
		return "", errors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(stored.UserID)
	if err != nil {
		return "", errors.ErrInvalidToken
	}

	return utils.GenerateAccessToken(&models.UserClaims{
		UserID: user.ID,
		Handle: user.Handle,
		Role:   user.Role,
	}, s.jwtSecret, accessTokenTTL)
}

func (s *service) Logout(refreshToken string) error {
	if refreshToken == "" {
		return errors.ErrMissingFields
	}
	return s.userRepo.DeleteRefreshToken(refreshToken)
}

func (s *service) ChangePassword(userID uint, oldPassword, newPassword, confirm string) error {
	if oldPassword == "" || newPassword == "" || confirm == "" {
		return errors.ErrMissingFields
	}
	if newPassword != confirm {
		return errors.ErrPasswordMismatch
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return errors.ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return errors.ErrInvalidCredentials
	}

	return s.updatePassword(user, newPassword)
}

func (s *service) ResetPassword(handle, newPassword, confirm string) error {
	if handle == "" || newPassword == "" || confirm == "" {
		return errors.ErrMissingFields
	}
	if newPassword != confirm {
		return errors.ErrPasswordMismatch
	}

	user, err := s.userRepo.GetByHandle(handle)
	if err != nil {
		return errors.ErrAccountNotFound
	}
	return s.updatePassword(user, newPassword)
}

func (s *service) updatePassword(user *models.User, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// BatchImport reads a CSV of accounts (handle, family, class, password,
// role) and creates the valid lines in one batch. Lines missing a handle
// or password, carrying an unknown role, or colliding with an existing
// handle are reported, not fatal.
func (s *service) BatchImport(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.ErrMissingFields
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"handle", "password"} {
		if _, ok := col[required]; !ok {
			return nil, errors.ErrMissingFields
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	result := &ImportResult{}
	var toCreate []*models.User
	seen := make(map[string]bool)

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.InvalidLines = append(result.InvalidLines, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		handle := field(row, "handle")
		password := field(row, "password")
		if handle == "" || password == "" {
			result.InvalidLines = append(result.InvalidLines, fmt.Sprintf("line %d: missing handle or password", line))
			continue
		}
		if seen[handle] {
			result.InvalidLines = append(result.InvalidLines, fmt.Sprintf("line %d: duplicate handle %s", line, handle))
			continue
		}
		if _, err := s.userRepo.GetByHandle(handle); err == nil {
			result.InvalidLines = append(result.InvalidLines, fmt.Sprintf("line %d: handle %s already exists", line, handle))
			continue
		} else if !stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check handle %s: %w", handle, err)
		}

		role := field(row, "role")
		if role == "" {
			role = models.RoleUser
		}
		if !models.KnownRole(role) {
			result.InvalidLines = append(result.InvalidLines, fmt.Sprintf("line %d: unknown role %s", line, role))
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		seen[handle] = true
		toCreate = append(toCreate, &models.User{
			Handle:   handle,
			Password: string(hashed),
			Role:     role,
			Family:   field(row, "family"),
			Class:    field(row, "class"),
		})
	}

	if err := s.userRepo.CreateBatch(toCreate); err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	result.CreatedCount = len(toCreate)
	return result, nil
}
