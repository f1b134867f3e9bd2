package middleware

import (
	"mime"
	"net/http"
)

// FormBodyBytes caps non-multipart posts (login, text forms).
const FormBodyBytes = 1 << 20

// UploadLimit caps request bodies: multipart uploads may use uploadBytes, everything
// else FormBodyBytes. Reads past the cap fail with *http.MaxBytesError, which page
// handlers turn into a 413 page.
func UploadLimit(uploadBytes int64) func(http.Handler) http.Handler {
	if uploadBytes < FormBodyBytes {
		uploadBytes = FormBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, bodyLimit(r, uploadBytes))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bodyLimit(r *http.Request, uploadBytes int64) int64 {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && mt == "multipart/form-data" {
		return uploadBytes
	}
	return FormBodyBytes
}
