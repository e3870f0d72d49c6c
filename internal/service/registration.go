package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/dadmor/campaignforge/internal/models"
)

// Roles a profile can register with.
var validRoles = map[string]bool{
	"beneficiary": true,
	"auditor":     true,
	"contractor":  true,
}

// RegistrationService turns finished registration-wizard runs into
// profile records.
type RegistrationService struct {
	store  RecordStore
	logger *slog.Logger
}

// NewRegistrationService creates a registration service.
func NewRegistrationService(store RecordStore, logger *slog.Logger) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{store: store, logger: logger}
}

// Register validates the accumulated registration record, hashes the
// password and creates the profile. The plaintext password never leaves
// this function.
func (s *RegistrationService) Register(ctx context.Context, data map[string]any) (string, error) {
	email := strings.TrimSpace(asString(data["email"]))
	role := asString(data["role"])
	password := asString(data["password"])

	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("register: invalid email %q", email)
	}
	if !validRoles[role] {
		return "", fmt.Errorf("register: invalid role %q", role)
	}
	if len(password) < 6 {
		return "", fmt.Errorf("register: password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("register: hash password: %w", err)
	}

	id, err := s.store.CreateProfile(ctx, models.Profile{
		Email:        email,
		Role:         role,
		OperatorID:   asString(data["operatorId"]),
		PasswordHash: string(hash),
	})
	if err != nil {
		return "", fmt.Errorf("register: %w", err)
	}

	s.logger.Info("profile registered", "email", email, "role", role)
	return id, nil
}
