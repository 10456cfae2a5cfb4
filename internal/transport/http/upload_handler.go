package http

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"

	"classctf-service/internal/domain"
)

// maxUploadBytes caps challenge images at 5 MiB.
const maxUploadBytes = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStore persists uploaded challenge images and returns a public URL.
type ImageStore interface {
	Save(ctx context.Context, name string, contentType string, data io.Reader) (string, error)
}

func (a *API) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := profileFrom(r.Context()); !ok {
		writeError(w, a.log, domain.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, a.log, domain.ErrValidation)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, a.log, domain.ErrValidation)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		writeError(w, a.log, domain.ErrValidation)
		return
	}
	name := uuid.NewString() + ext
	url, err := a.images.Save(r.Context(), name, contentType, file)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
