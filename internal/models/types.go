package models

type ErrorResponse struct {
	Error     string `json:"error" yaml:"error"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	Command   string `json:"command" yaml:"command"`
}

type DeleteResult struct {
	RemoteName string `json:"remote_name" yaml:"remote_name"`
	StatusCode int    `json:"status_code" yaml:"status_code"`
}

type GenerateResult struct {
	Path      string `json:"path" yaml:"path"`
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"`
	SizeHuman string `json:"size_human" yaml:"size_human"`
	SHA256    string `json:"sha256" yaml:"sha256"`
	Reused    bool   `json:"reused" yaml:"reused"`
}

// OperationSummary aggregates the timed calls of one operation kind.
// Durations holds only successful calls.
type OperationSummary struct {
	Operation string   `json:"operation" yaml:"operation"`
	Attempts  int      `json:"attempts" yaml:"attempts"`
	Succeeded int      `json:"succeeded" yaml:"succeeded"`
	Failed    int      `json:"failed" yaml:"failed"`
	Durations []string `json:"durations" yaml:"durations"`
	Average   string   `json:"average,omitempty" yaml:"average,omitempty"`
	Min       string   `json:"min,omitempty" yaml:"min,omitempty"`
	Max       string   `json:"max,omitempty" yaml:"max,omitempty"`
}

type Report struct {
	Target     string            `json:"target" yaml:"target"`
	Iterations int               `json:"iterations" yaml:"iterations"`
	StartTime  string            `json:"start_time" yaml:"start_time"`
	Duration   string            `json:"duration" yaml:"duration"`
	Upload     *OperationSummary `json:"upload,omitempty" yaml:"upload,omitempty"`
	Download   *OperationSummary `json:"download,omitempty" yaml:"download,omitempty"`
}
