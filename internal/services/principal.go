package services

import (
	"errors"
	"fmt"

	"github.com/workboard/workboard-api/internal/policy"
	"github.com/workboard/workboard-api/internal/repository"
	"gorm.io/gorm"
)

// loadPrincipal fetches a fresh snapshot of the acting user, departments
// included. Snapshots are taken per request; they are never cached, so
// department changes take effect on the next request.
func loadPrincipal(userRepo repository.UserRepository, userID uint64) (policy.Principal, error) {
	user, err := userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Principal{}, ErrUserNotFound
		}
		return policy.Principal{}, fmt.Errorf("failed to load principal: %w", err)
	}

	return policy.NewPrincipal(user), nil
}
