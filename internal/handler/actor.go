package handler

import (
	"context"

	"github.com/sakif/movielist/internal/apperror"
	"github.com/sakif/movielist/internal/auth"
	"github.com/sakif/movielist/internal/model"
	"github.com/sakif/movielist/internal/repository"
)

// resolveActor turns the userID the auth middleware stored in the context
// into the full user record the services take as their actor parameter.
//
// Resolving here (once, at the edge) is what lets every service method have
// an explicit actor argument instead of reading identity from ambient state.
// A token whose user has since been deleted resolves to NotFound, which we
// report as a forbidden rather than leaking account-existence information.
func resolveActor(ctx context.Context, users repository.UserRepository) (*model.User, error) {
	id, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, apperror.Forbidden("authentication required")
	}

	user, err := users.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Forbidden("authentication required")
	}
	return user, nil
}
