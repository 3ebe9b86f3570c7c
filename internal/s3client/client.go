package s3client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	appConfig "filebench/config"
	"filebench/internal/digest"
	"filebench/internal/models"
	"filebench/internal/transfer"
)

// Client runs the harness operations against an S3-compatible bucket. A
// chunked download is served by the SDK's ranged multi-part downloader, a
// plain one by a single GetObject.
type Client struct {
	s3Client       *s3.Client
	config         *appConfig.Config
	requestTimeout time.Duration
}

var _ transfer.Client = (*Client)(nil)

func New(ctx context.Context, cfg *appConfig.Config) (*Client, error) {
	if cfg.BucketName == "" {
		return nil, transfer.ConfigError("bucket name is required for the s3 backend")
	}

	httpClient := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
		if cfg.InsecureSkipVerify {
			if tr.TLSClientConfig == nil {
				tr.TLSClientConfig = &tls.Config{}
			}
			tr.TLSClientConfig.InsecureSkipVerify = true
		}
	})

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithHTTPClient(httpClient),
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID:     cfg.AccessKey,
				SecretAccessKey: cfg.SecretKey,
			},
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		configureEndpoint(o, cfg.ApiURL)
	})

	return &Client{
		s3Client:       s3Client,
		config:         cfg,
		requestTimeout: transfer.DefaultTimeout,
	}, nil
}

// configureEndpoint points the client at a custom endpoint. Anything that is
// not AWS gets path-style addressing, which MinIO and friends expect.
func configureEndpoint(o *s3.Options, endpoint string) {
	if endpoint == "" {
		return
	}

	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		o.BaseEndpoint = aws.String(endpoint)
	} else {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s", endpoint))
	}

	if !strings.Contains(endpoint, "amazonaws.com") {
		o.UsePathStyle = true
	}
}

func (c *Client) Upload(ctx context.Context, filePath string, timeout time.Duration) (*models.UploadResult, error) {
	key := filepath.Base(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, transfer.NewTransportError(transfer.OpUpload, key, fmt.Errorf("failed to open file %s: %w", filePath, err))
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, transfer.NewTransportError(transfer.OpUpload, key, fmt.Errorf("failed to stat file %s: %w", filePath, err))
	}

	if timeout <= 0 {
		timeout = transfer.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	uploader := manager.NewUploader(c.s3Client)
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.config.BucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(detectContentType(filePath)),
	})
	if err != nil {
		return nil, transfer.NewTransportError(transfer.OpUpload, key, describe(err))
	}

	return &models.UploadResult{
		LocalPath:  filePath,
		RemoteName: key,
		SizeBytes:  info.Size(),
		StatusCode: http.StatusOK,
	}, nil
}

func (c *Client) Download(ctx context.Context, name string, chunked bool) (*models.DownloadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var (
		buf []byte
		err error
	)
	if chunked {
		buf, err = c.downloadParts(ctx, name)
	} else {
		buf, err = c.downloadSingle(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	return &models.DownloadResult{
		RemoteName: name,
		Chunked:    chunked,
		SizeBytes:  int64(len(buf)),
		SHA256:     digest.Bytes(buf),
	}, nil
}

func (c *Client) downloadSingle(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, transfer.NewTransportError(transfer.OpDownload, key, describe(err))
	}
	defer out.Body.Close()

	buf, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, transfer.NewIOError(transfer.OpDownload, key, fmt.Errorf("failed to read object body: %w", err))
	}
	return buf, nil
}

func (c *Client) downloadParts(ctx context.Context, key string) ([]byte, error) {
	downloader := manager.NewDownloader(c.s3Client)
	buf := manager.NewWriteAtBuffer([]byte{})

	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, transfer.NewTransportError(transfer.OpDownload, key, describe(err))
	}
	return buf.Bytes(), nil
}

func (c *Client) Delete(ctx context.Context, name string) (*models.DeleteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	out, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.BucketName),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, transfer.NewTransportError(transfer.OpDelete, name, describe(err))
	}

	return &models.DeleteResult{
		RemoteName: name,
		StatusCode: statusCode(out.ResultMetadata, http.StatusNoContent),
	}, nil
}

// describe flattens S3 API errors into "Code: message"; other errors pass
// through unchanged.
func describe(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return err
}

func statusCode(metadata middleware.Metadata, fallback int) int {
	if resp, ok := awsmiddleware.GetRawResponse(metadata).(*smithyhttp.Response); ok && resp != nil {
		return resp.StatusCode
	}
	return fallback
}

func detectContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))

	contentTypes := map[string]string{
		".txt":  "text/plain",
		".json": "application/json",
		".bin":  "application/octet-stream",
		".zip":  "application/zip",
		".gz":   "application/gzip",
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	return "application/octet-stream"
}
