package models

type UploadResult struct {
	LocalPath  string `json:"local_path" yaml:"local_path"`
	RemoteName string `json:"remote_name" yaml:"remote_name"`
	SizeBytes  int64  `json:"size_bytes" yaml:"size_bytes"`
	StatusCode int    `json:"status_code" yaml:"status_code"`
}
