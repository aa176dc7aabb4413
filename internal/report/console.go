// Package report renders collected problems: a console summary with
// deduplicated problem lines, and a per-invocation report directory
// holding an HTML shell plus a JS-consumable data file.
package report

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/buildcache/internal/problems"
)

// SummaryHeader renders the one-line console summary with correct
// pluralization on both counts.
func SummaryHeader(total, unique int) string {
	problemWord := "problems"
	if total == 1 {
		problemWord = "problem"
	}
	seemWord := "seem"
	if unique == 1 {
		seemWord = "seems"
	}
	return fmt.Sprintf("%d instant execution %s found, %d of which %s unique.", total, problemWord, unique, seemWord)
}

// RenderConsole writes the summary header followed by one "> " line
// per unique problem, in first-discovery order.
func RenderConsole(w io.Writer, set *problems.Set) {
	fmt.Fprintln(w, SummaryHeader(set.TotalCount(), set.UniqueCount()))
	for _, p := range set.Unique() {
		fmt.Fprintf(w, "> %s\n", p.Message)
	}
}
