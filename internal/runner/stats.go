package runner

import (
	"time"

	"filebench/internal/models"
	"filebench/pkg/utils"
)

// Stats collects the durations of one operation kind. Only successful calls
// contribute a duration; failures are counted but never averaged in.
type Stats struct {
	Operation string
	Attempts  int
	Durations []time.Duration
}

func (s *Stats) Record(d time.Duration) {
	s.Attempts++
	s.Durations = append(s.Durations, d)
}

func (s *Stats) Fail() {
	s.Attempts++
}

func (s *Stats) Count() int {
	return len(s.Durations)
}

func (s *Stats) Failed() int {
	return s.Attempts - len(s.Durations)
}

func (s *Stats) Total() time.Duration {
	var total time.Duration
	for _, d := range s.Durations {
		total += d
	}
	return total
}

// Average returns the arithmetic mean of the recorded durations. ok is false
// when nothing succeeded.
func (s *Stats) Average() (avg time.Duration, ok bool) {
	if len(s.Durations) == 0 {
		return 0, false
	}
	return s.Total() / time.Duration(len(s.Durations)), true
}

func (s *Stats) Min() (time.Duration, bool) {
	if len(s.Durations) == 0 {
		return 0, false
	}
	m := s.Durations[0]
	for _, d := range s.Durations[1:] {
		m = min(m, d)
	}
	return m, true
}

func (s *Stats) Max() (time.Duration, bool) {
	if len(s.Durations) == 0 {
		return 0, false
	}
	m := s.Durations[0]
	for _, d := range s.Durations[1:] {
		m = max(m, d)
	}
	return m, true
}

func (s *Stats) Summary() *models.OperationSummary {
	summary := &models.OperationSummary{
		Operation: s.Operation,
		Attempts:  s.Attempts,
		Succeeded: s.Count(),
		Failed:    s.Failed(),
		Durations: make([]string, 0, len(s.Durations)),
	}
	for _, d := range s.Durations {
		summary.Durations = append(summary.Durations, utils.FormatDuration(d))
	}
	if avg, ok := s.Average(); ok {
		summary.Average = utils.FormatDuration(avg)
	}
	if m, ok := s.Min(); ok {
		summary.Min = utils.FormatDuration(m)
	}
	if m, ok := s.Max(); ok {
		summary.Max = utils.FormatDuration(m)
	}
	return summary
}
