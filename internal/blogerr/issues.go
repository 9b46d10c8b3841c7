package blogerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue records a single build problem together with the offending source
// path, so the operator can fix every problem in one pass.
type Issue struct {
	Source string
	Err    error
}

// Issues collects build problems across sources before the build aborts.
type Issues struct {
	list []Issue
}

// Add records an issue. A nil error is ignored.
func (is *Issues) Add(source string, err error) {
	if err == nil {
		return
	}
	is.list = append(is.list, Issue{Source: source, Err: err})
}

// Merge appends all issues from another collection.
func (is *Issues) Merge(other *Issues) {
	if other == nil {
		return
	}
	is.list = append(is.list, other.list...)
}

// Len returns the number of recorded issues.
func (is *Issues) Len() int {
	return len(is.list)
}

// All returns the recorded issues sorted by source path for stable reporting.
func (is *Issues) All() []Issue {
	out := make([]Issue, len(is.list))
	copy(out, is.list)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

// Err returns an aggregate error describing every issue, or nil when the
// collection is empty.
func (is *Issues) Err() error {
	if len(is.list) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "build failed with %d issue(s):", len(is.list))
	for _, issue := range is.All() {
		b.WriteString("\n  ")
		if issue.Source != "" {
			b.WriteString(issue.Source)
			b.WriteString(": ")
		}
		b.WriteString(issue.Err.Error())
	}
	return &aggregateError{msg: b.String(), issues: is.All()}
}

// aggregateError preserves the individual issues for errors.Is matching.
type aggregateError struct {
	msg    string
	issues []Issue
}

func (e *aggregateError) Error() string { return e.msg }

// Unwrap exposes the underlying issue errors (Go 1.20 multi-error form).
func (e *aggregateError) Unwrap() []error {
	errs := make([]error, len(e.issues))
	for i, issue := range e.issues {
		errs[i] = issue.Err
	}
	return errs
}

// IssueCount reports how many individual issues an error carries. An
// aggregate from Err counts its collected issues; any other non-nil error
// counts as one.
func IssueCount(err error) int {
	if err == nil {
		return 0
	}
	var agg *aggregateError
	if errors.As(err, &agg) {
		return len(agg.issues)
	}
	return 1
}
