// Package testserver provides an in-memory file server speaking the same
// routes as the service the harness benchmarks. It is used by tests.
package testserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Server stores uploaded files in memory and counts requests per route.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	requests map[string]int
}

// New starts a plain HTTP server. Use NewTLS for a self-signed HTTPS server.
func New() *Server {
	s := newServer()
	s.Server = httptest.NewServer(s.routes())
	return s
}

func NewTLS() *Server {
	s := newServer()
	s.Server = httptest.NewTLSServer(s.routes())
	return s
}

func newServer() *Server {
	return &Server{
		files:    make(map[string][]byte),
		requests: make(map[string]int),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /download/{name}", s.handleDownload)
	mux.HandleFunc("GET /download-chunked/{name}", s.handleChunkedDownload)
	mux.HandleFunc("DELETE /{name}", s.handleDelete)
	return mux
}

// Put stores content under name as if it had been uploaded.
func (s *Server) Put(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = content
}

// File returns the stored content for name.
func (s *Server) File(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[name]
	return content, ok
}

// Requests returns how many requests hit the given route key, e.g. "upload",
// "download", "download-chunked" or "delete".
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// TotalRequests returns the number of requests served on any route.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.requests {
		total += n
	}
	return total
}

func (s *Server) count(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[route]++
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	s.count("upload")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Put(header.Filename, content)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.count("download")

	content, ok := s.File(r.PathValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write(content)
}

func (s *Server) handleChunkedDownload(w http.ResponseWriter, r *http.Request) {
	s.count("download-chunked")

	content, ok := s.File(r.PathValue("name"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	flusher, _ := w.(http.Flusher)
	const chunk = 512
	for i := 0; i < len(content); i += chunk {
		end := min(i+chunk, len(content))
		w.Write(content[i:end])
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.count("delete")

	name := r.PathValue("name")
	s.mu.Lock()
	_, ok := s.files[name]
	delete(s.files, name)
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
