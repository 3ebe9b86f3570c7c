package models

type DownloadResult struct {
	RemoteName string `json:"remote_name" yaml:"remote_name"`
	Chunked    bool   `json:"chunked" yaml:"chunked"`
	SizeBytes  int64  `json:"size_bytes" yaml:"size_bytes"`
	SHA256     string `json:"sha256" yaml:"sha256"`
}
