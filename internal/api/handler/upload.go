package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// readUpload limits the request body to maxBytes and returns the "file" part.
// On failure it writes the error response and returns ok == false.
// The caller must close the returned file.
func readUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "file_too_large", "Upload exceeds the maximum allowed size")
			return nil, nil, false
		}
		Error(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form with a file field")
		return nil, nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		Error(w, http.StatusBadRequest, "missing_file", "No file provided")
		return nil, nil, false
	}
	return file, header, true
}
