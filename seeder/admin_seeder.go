package seeder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hrms-backend/models"
	"hrms-backend/pkg/password"
	"hrms-backend/repository"
)

// SeedAdmin creates the bootstrap admin account unless the email is already taken.
func SeedAdmin(ctx context.Context, userRepo repository.UserRepository, email, plain string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := userRepo.FindUserByEmail(ctx, email); err == nil {
		log.Printf("Admin %s already exists, skipping", email)
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hashed, err := password.HashPassword(plain)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &models.User{
		Name:     "Administrator",
		Email:    email,
		Password: hashed,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}

	log.Printf("Admin %s created", email)
	return nil
}
