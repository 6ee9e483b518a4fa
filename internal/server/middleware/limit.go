package middleware

import "net/http"

// MaxBodyBytes bounds request bodies. A reading form is a few dozen bytes.
const MaxBodyBytes = 4 << 10

// BodyLimit caps the request body at n bytes. Reads past the cap fail with
// *http.MaxBytesError.
func BodyLimit(n int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
