package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Rakhulsr/go-classifieds/app/helpers"
	"github.com/Rakhulsr/go-classifieds/app/storage"
	"github.com/Rakhulsr/go-classifieds/app/utils/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"
	"github.com/unrolled/render"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// baseHandler carries what every entity handler needs to decode, page and
// render a request.
type baseHandler struct {
	render    *render.Render
	validator *validator.Validate
	pager     pagination.Paginator
}

type listResponse struct {
	Items   interface{} `json:"items"`
	Total   int64       `json:"total"`
	NumPage int         `json:"num_page"`
}

// userListResponse keeps the num_pages key user listings have always used.
type userListResponse struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	NumPages int         `json:"num_pages"`
}

var statusOK = map[string]string{"status": "ok"}

func (h *baseHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *helpers.APIError
	switch {
	case errors.As(err, &apiErr):
		body := map[string]interface{}{"error": apiErr.Message}
		if len(apiErr.Fields) > 0 {
			body["errors"] = apiErr.Fields
		}
		_ = h.render.JSON(w, apiErr.Status, body)
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		h.respondError(w, r, &helpers.APIError{
			Status:  http.StatusBadRequest,
			Message: "validation failed",
			Fields:  map[string]string{"password": fmt.Sprintf("password must be at most %d bytes.", helpers.BcryptMaxBytes)},
		})
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		hlog.FromRequest(r).Warn().Err(err).Msg("foreign key violation")
		_ = h.render.JSON(w, http.StatusBadRequest, map[string]string{"error": "referenced record does not exist"})
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		_ = h.render.JSON(w, http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
	}
}

func (h *baseHandler) notFound(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, helpers.NewNotFoundError())
}

// removeBlobs deletes blobs whose rows are already gone. Failures are logged
// only; the delete itself has succeeded.
func removeBlobs(r *http.Request, store storage.BlobStore, keys []string) {
	for _, key := range keys {
		if err := store.Delete(r.Context(), key); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("image", key).Msg("failed to remove orphaned image")
		}
	}
}
