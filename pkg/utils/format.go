package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"filebench/internal/models"

	"gopkg.in/yaml.v3"
)

// TimestampLayout is the prefix layout of every event line.
const TimestampLayout = "2006-01-02 15:04:05.000000 -07:00"

func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration keeps two decimals in the duration's largest unit,
// e.g. 1.23s or 45.68ms.
func FormatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	case d >= time.Microsecond:
		return d.Round(10 * time.Nanosecond).String()
	default:
		return d.String()
	}
}

func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Event writes a single timestamped line to w.
func Event(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s - %s\n", Timestamp(time.Now()), fmt.Sprintf(format, args...))
}

func WriteJSON(w io.Writer, data interface{}) error {
	jsonOutput, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(jsonOutput))
	return nil
}

func WriteYAML(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

func PrintJSON(data interface{}) error {
	return WriteJSON(os.Stdout, data)
}

// WriteError writes err as a JSON ErrorResponse to w.
func WriteError(w io.Writer, err error, command string) {
	errorResp := models.ErrorResponse{
		Error:     err.Error(),
		Timestamp: FormatTime(time.Now()),
		Command:   command,
	}
	if err := WriteJSON(w, errorResp); err != nil {
		slog.Error("Failed to print error in JSON format", "error", err)
		fmt.Fprintln(w, "Error: ", errorResp)
	}
}

func PrintError(err error, command string) {
	WriteError(os.Stderr, err, command)
}
