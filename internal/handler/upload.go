package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formImage reads one image part from a multipart body limited to
// MaxUploadSize. The caller closes the returned file.
func (h *Handlers) formImage(w http.ResponseWriter, r *http.Request, field string) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)

	if err := r.ParseMultipartForm(h.Cfg.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, fmt.Sprintf("File too large (max %d MB)", h.Cfg.MaxUploadSize/(1024*1024)), http.StatusBadRequest)
		} else {
			WriteError(w, "Could not read the upload", http.StatusBadRequest)
		}
		return nil, nil, false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		WriteError(w, fmt.Sprintf("Missing file field %q", field), http.StatusBadRequest)
		return nil, nil, false
	}

	if !allowedImageTypes[header.Header.Get("Content-Type")] {
		file.Close()
		WriteError(w, "Unsupported file type. Allowed: JPEG, PNG, GIF, WebP", http.StatusBadRequest)
		return nil, nil, false
	}

	return file, header, true
}
