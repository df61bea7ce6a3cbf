package httpserver

import (
	"net/http"
	"sync"
)

// responseWriter tracks whether the status line has been sent so the
// error boundary knows if a fallback body can still be written.
type responseWriter struct {
	http.ResponseWriter
	mu            sync.Mutex
	headerWritten bool
	status        int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.headerWritten {
		return
	}
	rw.headerWritten = true
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if !rw.headerWritten {
		rw.headerWritten = true
		rw.status = http.StatusOK
	}
	return rw.ResponseWriter.Write(b)
}

// HeaderWritten reports whether a status code has been sent.
func (rw *responseWriter) HeaderWritten() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.headerWritten
}

// Status returns the status sent so far, or 0.
func (rw *responseWriter) Status() int {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.status
}
