// Package failure maps a non-success policy outcome plus the collected
// problems into the single terminal error surfaced to the caller.
package failure

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/buildcache/internal/policy"
	"git.home.luguber.info/inful/buildcache/internal/problems"
	"git.home.luguber.info/inful/buildcache/internal/report"
)

// Fixed message prefixes, one per failure class.
const (
	SerializationErrorsMessage = "instant execution state could not be cached"
	GenericProblemsMessage     = "problems found while caching instant execution state"
	TooManyProblemsMessage     = "maximum number of instant execution problems reached"
)

// Cause is one chained cause of a terminal failure. Its message equals
// the problem's message; error-kind problems further chain the original
// captured error.
type Cause struct {
	msg   string
	cause error
}

func (c *Cause) Error() string { return c.msg }
func (c *Cause) Unwrap() error { return c.cause }

// Error is the terminal failure for one cache run.
type Error struct {
	prefix     string
	header     string
	reportFile string
	causes     []*Cause
}

// New builds the terminal error for a non-success outcome. It returns
// nil for success outcomes.
func New(out policy.Outcome, set *problems.Set, reportFile string) *Error {
	if out.Succeeded() {
		return nil
	}

	prefix := GenericProblemsMessage
	switch {
	case out.Kind == policy.TooManyProblems:
		prefix = TooManyProblemsMessage
	case out.Failure == policy.SerializationErrors:
		prefix = SerializationErrorsMessage
	}

	unique := set.Unique()
	causes := make([]*Cause, 0, len(unique))
	for _, p := range unique {
		causes = append(causes, &Cause{msg: p.Message, cause: p.Cause})
	}

	return &Error{
		prefix:     prefix,
		header:     report.SummaryHeader(set.TotalCount(), set.UniqueCount()),
		reportFile: reportFile,
		causes:     causes,
	}
}

// Error renders the fixed prefix, the console summary header, the
// report pointer, and numbered causes when more than one unique
// problem exists. A single cause is reachable through Unwrap instead.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.prefix)
	b.WriteString(": ")
	b.WriteString(e.header)
	if e.reportFile != "" {
		b.WriteString("\nSee the complete report at ")
		b.WriteString(e.reportFile)
	}
	if len(e.causes) > 1 {
		for i, c := range e.causes {
			fmt.Fprintf(&b, "\nCause %d: %s", i+1, c.msg)
		}
	}
	return b.String()
}

// Unwrap exposes one chained cause per unique problem.
func (e *Error) Unwrap() []error {
	out := make([]error, len(e.causes))
	for i, c := range e.causes {
		out[i] = c
	}
	return out
}

// ReportFile returns the path of the report artifact, empty when no
// report was written.
func (e *Error) ReportFile() string { return e.reportFile }
