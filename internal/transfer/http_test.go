package transfer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filebench/internal/digest"
	"filebench/internal/testserver"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestUpload(t *testing.T) {
	server := testserver.New()
	defer server.Close()

	content := bytes.Repeat([]byte("upload-content-"), 200)
	path := writeTempFile(t, "payload.bin", content)

	client := NewHTTPClient(server.URL, HTTPOptions{})
	result, err := client.Upload(context.Background(), path, 5*time.Second)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if result.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusOK)
	}
	if result.RemoteName != "payload.bin" {
		t.Errorf("RemoteName = %s, want %s", result.RemoteName, "payload.bin")
	}
	if result.SizeBytes != int64(len(content)) {
		t.Errorf("SizeBytes = %d, want %d", result.SizeBytes, len(content))
	}

	stored, ok := server.File("payload.bin")
	if !ok {
		t.Fatal("server did not store the uploaded file")
	}
	if !bytes.Equal(stored, content) {
		t.Errorf("stored content differs from uploaded content")
	}
}

func TestUploadMissingFile(t *testing.T) {
	server := testserver.New()
	defer server.Close()

	client := NewHTTPClient(server.URL, HTTPOptions{})
	_, err := client.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.bin"), time.Second)
	if err == nil {
		t.Fatal("Upload() of missing file should return error")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Upload() error = %v, want transport kind", err)
	}
	if server.Requests("upload") != 0 {
		t.Errorf("server received %d upload requests, want 0", server.Requests("upload"))
	}
}

func TestUploadReturnsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))
	defer server.Close()

	path := writeTempFile(t, "full.bin", []byte("data"))
	client := NewHTTPClient(server.URL, HTTPOptions{})

	result, err := client.Upload(context.Background(), path, time.Second)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.StatusCode != http.StatusInsufficientStorage {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusInsufficientStorage)
	}
}

func TestUploadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	path := writeTempFile(t, "slow.bin", []byte("data"))
	client := NewHTTPClient(server.URL, HTTPOptions{})

	_, err := client.Upload(context.Background(), path, 50*time.Millisecond)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Upload() error = %v, want transport kind", err)
	}
}

func TestUploadMultipartFraming(t *testing.T) {
	var gotLength int64
	var gotField, gotFilename string
	var gotContent []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		part, err := reader.NextPart()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotField = part.FormName()
		gotFilename = part.FileName()
		gotContent, _ = io.ReadAll(part)
		if _, err := reader.NextPart(); err != io.EOF {
			http.Error(w, "expected a single part", http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	content := []byte("framed")
	path := writeTempFile(t, "framed.txt", content)
	client := NewHTTPClient(server.URL+"/", HTTPOptions{})

	result, err := client.Upload(context.Background(), path, time.Second)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if result.StatusCode != http.StatusCreated {
		t.Fatalf("StatusCode = %d, want %d", result.StatusCode, http.StatusCreated)
	}
	if gotLength <= int64(len(content)) {
		t.Errorf("ContentLength = %d, want a known length larger than the content", gotLength)
	}
	if gotField != "file" {
		t.Errorf("form field = %s, want file", gotField)
	}
	if gotFilename != "framed.txt" {
		t.Errorf("filename = %s, want framed.txt", gotFilename)
	}
	if string(gotContent) != string(content) {
		t.Errorf("part content = %q, want %q", gotContent, content)
	}
}

func TestDownload(t *testing.T) {
	server := testserver.New()
	defer server.Close()

	content := bytes.Repeat([]byte("0123456789"), 777)
	server.Put("data.bin", content)

	client := NewHTTPClient(server.URL, HTTPOptions{})

	tests := []struct {
		name    string
		chunked bool
		route   string
	}{
		{"Plain", false, "download"},
		{"Chunked", true, "download-chunked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := server.Requests(tt.route)

			result, err := client.Download(context.Background(), "data.bin", tt.chunked)
			if err != nil {
				t.Fatalf("Download() error = %v", err)
			}
			if result.SizeBytes != int64(len(content)) {
				t.Errorf("SizeBytes = %d, want %d", result.SizeBytes, len(content))
			}
			if result.SHA256 != digest.Bytes(content) {
				t.Errorf("SHA256 = %s, want %s", result.SHA256, digest.Bytes(content))
			}
			if result.Chunked != tt.chunked {
				t.Errorf("Chunked = %v, want %v", result.Chunked, tt.chunked)
			}
			if server.Requests(tt.route) != before+1 {
				t.Errorf("route %s was not hit", tt.route)
			}
		})
	}
}

func TestDownloadPlainAndChunkedAgree(t *testing.T) {
	server := testserver.New()
	defer server.Close()

	server.Put("same.bin", bytes.Repeat([]byte("abc"), 4000))
	client := NewHTTPClient(server.URL, HTTPOptions{})

	plain, err := client.Download(context.Background(), "same.bin", false)
	if err != nil {
		t.Fatalf("plain Download() error = %v", err)
	}
	chunked, err := client.Download(context.Background(), "same.bin", true)
	if err != nil {
		t.Fatalf("chunked Download() error = %v", err)
	}

	if plain.SizeBytes != chunked.SizeBytes || plain.SHA256 != chunked.SHA256 {
		t.Errorf("plain (%d, %s) and chunked (%d, %s) downloads differ",
			plain.SizeBytes, plain.SHA256, chunked.SizeBytes, chunked.SHA256)
	}
}

func TestDownloadNotFound(t *testing.T) {
	server := testserver.New()
	defer server.Close()

	client := NewHTTPClient(server.URL, HTTPOptions{})
	_, err := client.Download(context.Background(), "missing.bin", false)
	if err == nil {
		t.Fatal("Download() of missing file should return error")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Download() error = %v, want transport kind", err)
	}

	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("Download() error is not an *OpError: %v", err)
	}
	if opErr.Op != OpDownload || opErr.Name != "missing.bin" {
		t.Errorf("OpError = %+v, want op download on missing.bin", opErr)
	}
}

func TestDownloadTruncatedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, HTTPOptions{})
	_, err := client.Download(context.Background(), "short.bin", false)
	if !errors.Is(err, ErrIO) {
		t.Errorf("Download() error = %v, want io kind", err)
	}
}

func TestDownloadConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewHTTPClient(url, HTTPOptions{})
	_, err := client.Download(context.Background(), "any.bin", false)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Download() error = %v, want transport kind", err)
	}
}

func TestInsecureSkipVerify(t *testing.T) {
	server := testserver.NewTLS()
	defer server.Close()

	server.Put("secure.bin", []byte("tls"))

	strict := NewHTTPClient(server.URL, HTTPOptions{})
	if _, err := strict.Download(context.Background(), "secure.bin", false); err == nil {
		t.Error("Download() against self-signed server should fail without InsecureSkipVerify")
	}

	insecure := NewHTTPClient(server.URL, HTTPOptions{InsecureSkipVerify: true})
	result, err := insecure.Download(context.Background(), "secure.bin", false)
	if err != nil {
		t.Fatalf("Download() with InsecureSkipVerify error = %v", err)
	}
	if result.SHA256 != digest.Bytes([]byte("tls")) {
		t.Errorf("SHA256 = %s, want %s", result.SHA256, digest.Bytes([]byte("tls")))
	}
}

func TestDelete(t *testing.T) {
	server := testserver.New()
	defer server.Close()

	server.Put("old.bin", []byte("old"))
	client := NewHTTPClient(server.URL, HTTPOptions{})

	result, err := client.Delete(context.Background(), "old.bin")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if result.StatusCode != http.StatusNoContent {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusNoContent)
	}
	if _, ok := server.File("old.bin"); ok {
		t.Error("file still present after delete")
	}

	result, err = client.Delete(context.Background(), "old.bin")
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if result.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", result.StatusCode, http.StatusNotFound)
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		segments []string
		expected string
	}{
		{"Upload", "http://host:8080", []string{"upload"}, "http://host:8080/upload"},
		{"Trailing slash trimmed", "http://host/", []string{"download", "a.bin"}, "http://host/download/a.bin"},
		{"Delete is direct concatenation", "https://host/api", []string{"dir/a.bin"}, "https://host/api/dir/a.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewHTTPClient(tt.base, HTTPOptions{})
			if result := client.url(tt.segments...); result != tt.expected {
				t.Errorf("url() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestOpErrorMessage(t *testing.T) {
	err := NewIOError(OpDownload, "a.bin", errors.New("disk gone"))
	msg := err.Error()
	for _, want := range []string{"download", "a.bin", "io error", "disk gone"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q does not contain %q", msg, want)
		}
	}
	if errors.Is(err, ErrTransport) {
		t.Error("io error should not match ErrTransport")
	}
}

func TestConfigError(t *testing.T) {
	err := ConfigError("server URL is required for %s", "uploading files")
	if !errors.Is(err, ErrConfig) {
		t.Errorf("ConfigError() = %v, want ErrConfig kind", err)
	}
	if !strings.Contains(err.Error(), "uploading files") {
		t.Errorf("ConfigError() message = %q", err.Error())
	}
}
