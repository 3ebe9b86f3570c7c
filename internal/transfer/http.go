package transfer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filebench/internal/digest"
	"filebench/internal/models"
)

const (
	uploadPath          = "upload"
	downloadPath        = "download"
	chunkedDownloadPath = "download-chunked"
	formFileField       = "file"
)

type HTTPOptions struct {
	// InsecureSkipVerify accepts servers whose TLS certificate cannot be
	// validated. Only meant for test servers.
	InsecureSkipVerify bool
	// RequestTimeout bounds download and delete calls. Zero means DefaultTimeout.
	RequestTimeout time.Duration
}

// HTTPClient talks to a file server exposing /upload, /download/{name},
// /download-chunked/{name} and DELETE /{name}.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	requestTimeout time.Duration
}

func NewHTTPClient(serverURL string, opts HTTPOptions) *HTTPClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClient{
		baseURL:        strings.TrimRight(serverURL, "/"),
		httpClient:     &http.Client{Transport: transport},
		requestTimeout: timeout,
	}
}

func (c *HTTPClient) Upload(ctx context.Context, filePath string, timeout time.Duration) (*models.UploadResult, error) {
	name := filepath.Base(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, NewTransportError(OpUpload, name, fmt.Errorf("failed to open file %s: %w", filePath, err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, NewTransportError(OpUpload, name, fmt.Errorf("failed to stat file %s: %w", filePath, err))
	}

	body, contentType, contentLength, err := multipartBody(file, name, info.Size())
	if err != nil {
		return nil, NewTransportError(OpUpload, name, err)
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(uploadPath), body)
	if err != nil {
		return nil, NewTransportError(OpUpload, name, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = contentLength

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(OpUpload, name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return &models.UploadResult{
		LocalPath:  filePath,
		RemoteName: name,
		SizeBytes:  info.Size(),
		StatusCode: resp.StatusCode,
	}, nil
}

func (c *HTTPClient) Download(ctx context.Context, name string, chunked bool) (*models.DownloadResult, error) {
	endpoint := downloadPath
	if chunked {
		endpoint = chunkedDownloadPath
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(endpoint, name), nil)
	if err != nil {
		return nil, NewTransportError(OpDownload, name, fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(OpDownload, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, NewTransportError(OpDownload, name, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewIOError(OpDownload, name, fmt.Errorf("failed to read response body: %w", err))
	}

	return &models.DownloadResult{
		RemoteName: name,
		Chunked:    chunked,
		SizeBytes:  int64(len(buf)),
		SHA256:     digest.Bytes(buf),
	}, nil
}

func (c *HTTPClient) Delete(ctx context.Context, name string) (*models.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(name), nil)
	if err != nil {
		return nil, NewTransportError(OpDelete, name, fmt.Errorf("failed to build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewTransportError(OpDelete, name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return &models.DeleteResult{
		RemoteName: name,
		StatusCode: resp.StatusCode,
	}, nil
}

// url joins path segments onto the base URL without escaping; callers pass
// names already shaped for the server.
func (c *HTTPClient) url(segments ...string) string {
	return c.baseURL + "/" + strings.Join(segments, "/")
}

// multipartBody frames content as a single-part multipart/form-data body.
// The content is streamed rather than buffered, and the total length is
// known up front so the request is not sent with chunked encoding.
func multipartBody(content io.Reader, filename string, size int64) (io.Reader, string, int64, error) {
	var framing bytes.Buffer
	mw := multipart.NewWriter(&framing)

	if _, err := mw.CreateFormFile(formFileField, filename); err != nil {
		return nil, "", 0, fmt.Errorf("failed to create multipart part: %w", err)
	}
	head := bytes.Clone(framing.Bytes())
	framing.Reset()

	if err := mw.Close(); err != nil {
		return nil, "", 0, fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	tail := bytes.Clone(framing.Bytes())

	body := io.MultiReader(bytes.NewReader(head), io.LimitReader(content, size), bytes.NewReader(tail))
	length := int64(len(head)) + size + int64(len(tail))

	return body, mw.FormDataContentType(), length, nil
}
