package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vidhyadham/server/internal/storage"
	"github.com/vidhyadham/server/internal/store"
)

// UploadHandler accepts identity-document uploads and optionally attaches
// the stored URL to a member record.
type UploadHandler struct {
	Store   *store.Store
	Storage *storage.Local
}

func NewUploadHandler(s *store.Store, st *storage.Local) *UploadHandler {
	return &UploadHandler{Store: s, Storage: st}
}

// Upload handles POST /v1/uploads (multipart, field "file"). An optional
// user_id form value attaches the document to that member in the same
// request. Accepted types are jpeg, png and pdf up to 5MB.
func (h *UploadHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file field is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "could not read upload"})
	}
	defer src.Close()

	url, err := h.Storage.Save(fh.Header.Get("Content-Type"), fh.Size, src)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
		case errors.Is(err, storage.ErrBadType):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not store file"})
		}
	}

	if raw := c.FormValue("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
		}
		u, err := h.Store.AttachIDProof(c.Request().Context(), id, url, actingAdmin(c))
		if err != nil {
			countFailure("attach_id_proof", err)
			return writeStoreErr(c, err)
		}
		return c.JSON(http.StatusCreated, map[string]any{"url": url, "user": u})
	}
	return c.JSON(http.StatusCreated, map[string]string{"url": url})
}
