package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/buildcache/internal/problems"
)

const (
	// HTMLFileName is the human-viewable shell.
	HTMLFileName = "instant-execution-report.html"
	// DataFileName is the machine-readable data file. Evaluating it
	// yields a callable returning the full problem array.
	DataFileName = "instant-execution-report-data.js"
)

// Record is one problem entry in the report data. Error is present
// only when the underlying failure carried a captured stack trace.
type Record struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Writer produces one report directory per invocation under a base
// directory.
type Writer struct {
	baseDir string
}

// NewWriter creates a report writer rooted at baseDir.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// Write renders the report for one invocation and returns the path of
// the HTML shell. The data array holds every recorded problem
// including duplicates, so its length equals the total count.
func (w *Writer) Write(invocationID string, set *problems.Set, truncated bool) (string, error) {
	dir := filepath.Join(w.baseDir, invocationID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := renderData(set, truncated)
	if err != nil {
		return "", err
	}
	dataPath := filepath.Join(dir, DataFileName)
	if err := os.WriteFile(dataPath, data, 0o600); err != nil {
		return "", fmt.Errorf("write report data: %w", err)
	}

	html, err := renderShell(set, truncated)
	if err != nil {
		return "", err
	}
	htmlPath := filepath.Join(dir, HTMLFileName)
	if err := os.WriteFile(htmlPath, html, 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return htmlPath, nil
}

func records(set *problems.Set) []Record {
	out := make([]Record, 0, set.TotalCount())
	for _, p := range set.All() {
		out = append(out, Record{Message: p.Message, Error: p.Trace})
	}
	return out
}

func renderData(set *problems.Set, truncated bool) ([]byte, error) {
	payload, err := json.MarshalIndent(records(set), "  ", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report data: %w", err)
	}
	var b bytes.Buffer
	b.WriteString("// Instant execution problem report data.\n")
	b.WriteString("function instantExecutionProblems() {\n  return ")
	b.Write(payload)
	b.WriteString(";\n}\n")
	fmt.Fprintf(&b, "instantExecutionProblems.truncated = %t;\n", truncated)
	return b.Bytes(), nil
}

// renderShell builds the HTML page from a markdown summary so the
// human-readable report and the console output stay consistent.
func renderShell(set *problems.Set, truncated bool) ([]byte, error) {
	var md bytes.Buffer
	md.WriteString("# Instant execution report\n\n")
	md.WriteString(SummaryHeader(set.TotalCount(), set.UniqueCount()) + "\n\n")
	if truncated {
		md.WriteString("The walk was stopped after reaching the configured problem limit; this report is partial.\n\n")
	}
	md.WriteString("## Unique problems\n\n")
	for _, p := range set.Unique() {
		fmt.Fprintf(&md, "- %s\n", p.Message)
	}

	var body bytes.Buffer
	if err := goldmark.Convert(md.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("render report body: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Instant execution report</title>\n")
	fmt.Fprintf(&page, "<script src=%q></script>\n", DataFileName)
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// ParseDataFile reads a report data file back into records, for
// tooling that inspects a previously written report.
func ParseDataFile(path string) ([]Record, bool, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - path points inside our own report directory
	if err != nil {
		return nil, false, fmt.Errorf("read report data: %w", err)
	}
	text := string(raw)
	start := strings.Index(text, "return ")
	end := strings.LastIndex(text, "];")
	if start < 0 || end < 0 || end <= start {
		return nil, false, fmt.Errorf("malformed report data file %s", path)
	}
	var recs []Record
	if err := json.Unmarshal([]byte(text[start+len("return "):end+1]), &recs); err != nil {
		return nil, false, fmt.Errorf("parse report data: %w", err)
	}
	truncated := strings.Contains(text, "instantExecutionProblems.truncated = true;")
	return recs, truncated, nil
}
