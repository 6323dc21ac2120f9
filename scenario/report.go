package scenario

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of a stage
type Status int

// statuses
const (
	Passed Status = iota
	Failed
	Skipped
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// StageResult is the outcome of one stage
type StageResult struct {
	Name     string
	Status   Status
	Duration time.Duration
	Err      error
}

// Report lists the outcome of every stage of a run
type Report struct {
	RunID   string
	Results []StageResult
}

// Passed reports whether every stage passed
func (rp *Report) Passed() bool {
	for _, r := range rp.Results {
		if r.Status != Passed {
			return false
		}
	}
	return len(rp.Results) > 0
}

// Failed returns the failed stage or nil
func (rp *Report) Failed() *StageResult {
	for i := range rp.Results {
		if rp.Results[i].Status == Failed {
			return &rp.Results[i]
		}
	}
	return nil
}

// Count returns the number of stages with status s
func (rp *Report) Count(s Status) int {
	n := 0
	for _, r := range rp.Results {
		if r.Status == s {
			n++
		}
	}
	return n
}

func (rp *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "run %s\n", rp.RunID)
	for _, r := range rp.Results {
		fmt.Fprintf(&sb, "  %-12s %-8s", r.Name, r.Status)
		if r.Status != Skipped {
			fmt.Fprintf(&sb, " %s", r.Duration.Round(time.Millisecond))
		}
		if r.Err != nil {
			fmt.Fprintf(&sb, " %v", r.Err)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "%d passed, %d failed, %d skipped", rp.Count(Passed), rp.Count(Failed), rp.Count(Skipped))
	return sb.String()
}
