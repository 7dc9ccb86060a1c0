package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskpad/internal/service"
)

// getPathUUID extracts a UUID from the URL path parameters. A malformed
// identifier cannot name an existing task, so it is reported as not found.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, paramName))
	if err != nil {
		return uuid.Nil, service.ErrTaskNotFound
	}
	return id, nil
}
