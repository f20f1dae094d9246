package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dataflexhq/dataflex-backend/api/middleware"
	pkgerrors "github.com/dataflexhq/dataflex-backend/pkg/errors"
)

// actorUUID resolves the authenticated actor from the request context.
func actorUUID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}
