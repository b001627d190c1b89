package testutil

import (
	"net/http"
)

// These functions allow us to mock http responses from the agency,
// the backend, and the session service.

var EmptyHeaders = make(map[string]string, 0)

// HttpStringResponder returns an http handler function that returns
// the specified string, along with the specified headers.
func HttpStringResponder(headers map[string]string, data string) http.HandlerFunc {
	f := func(w http.ResponseWriter, r *http.Request) {
		setHeaders(w, headers)
		w.Write([]byte(data))
	}
	return http.HandlerFunc(f)
}

// HttpStatusResponder returns an http handler function that responds
// with the given status code and body.
func HttpStatusResponder(status int, data string) http.HandlerFunc {
	f := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(data))
	}
	return http.HandlerFunc(f)
}

func setHeaders(w http.ResponseWriter, headers map[string]string) {
	if headers != nil {
		for key, value := range headers {
			w.Header().Set(key, value)
		}
	}
}
