package handlers

import (
	"errors"

	"github.com/gymcore/gym-gateway/internal/repository"
	"github.com/gymcore/gym-gateway/internal/service"
	apperrors "github.com/gymcore/gym-gateway/pkg/util"
)

// serviceError translates service and repository errors into DomainErrors.
func serviceError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, nil)
	case errors.Is(err, service.ErrUnknownTrainer):
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "trainer_id"})
	case errors.Is(err, service.ErrInvalidAccount):
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "username"})
	case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(service.ErrUsernameTaken.Error(), nil)
	}
	return err
}
