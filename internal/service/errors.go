package service

import (
	"errors"

	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// storeError translates repository errors into the API taxonomy. A malformed
// identifier cannot name an existing record, so it reads as not found.
func storeError(err error, resource, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidID):
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	default:
		return apperrors.NewUpstreamFailure("document store unavailable", err)
	}
}
