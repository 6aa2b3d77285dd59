// Package extractor recovers a structurally valid JSON document from the raw
// text a language model returns. Models are prompted to emit a single JSON
// object and routinely fail to: they wrap it in prose, fence it in markdown,
// leave trailing commas or truncate it. The extractor runs a fixed, ordered
// cascade of recovery strategies and stops at the first one that yields valid
// JSON. It never returns a Go error for malformed input; failure is data.
package extractor

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/schemadraft/schemadraft/internal/schema"
)

const (
	// UICap is the raw-response cap applied on the UI-facing failure path.
	UICap = 500
	// ErrorPathCap is the cap applied when the failure is forwarded through
	// the generation-error path.
	ErrorPathCap = 1000

	truncationMarker = "..."

	failureMessage = "Failed to extract valid JSON from response"
)

// Failure is the terminal result when no strategy recovers valid JSON. It is
// a value, not an error: callers surface it to the user for prompt debugging.
type Failure struct {
	Error       string `json:"error"`
	RawResponse string `json:"raw_response"`
}

// Result is the outcome of one extraction. Exactly one of Document/Failure is
// set; callers distinguish by Failure == nil. JSON holds the exact byte slice
// that parsed, so the original object survives round-trips unchanged even
// when the model added keys we do not model.
type Result struct {
	Document *schema.Document
	JSON     json.RawMessage
	Strategy string
	Failure  *Failure
}

// OK reports whether extraction produced a document.
func (r Result) OK() bool {
	return r.Failure == nil
}

// A strategy attempts to recover a JSON object from the cleaned input text.
// It returns the candidate bytes and true only when they parse as JSON.
// Strategies are pure: they never mutate the input.
type strategy struct {
	name string
	fn   func(text string) ([]byte, bool)
}

// Ordered cheapest/most-specific first so well-formed output (the common
// case) costs a single parse attempt.
var strategies = []strategy{
	{"direct", direct},
	{"fenced-block", fencedBlock},
	{"outer-brace", outerBrace},
	{"trailing-comma", trailingComma},
	{"line-accumulation", lineAccumulation},
}

// Extract runs the strategy cascade over the raw model response. The returned
// Failure, when set, carries the fixed error message and a prefix of the raw
// text capped at UICap characters. Extract is pure and idempotent: the same
// input always yields the same result.
func Extract(raw string) Result {
	cleaned := strings.TrimSpace(raw)
	for _, s := range strategies {
		candidate, ok := s.fn(cleaned)
		if !ok {
			continue
		}
		var doc schema.Document
		// candidate is known-valid JSON but may be a bare array/scalar which
		// cannot decode into the document shape. Shape is not the extractor's
		// concern beyond "decodes into an object".
		if err := json.Unmarshal(candidate, &doc); err != nil {
			continue
		}
		return Result{Document: &doc, JSON: candidate, Strategy: s.name}
	}
	return Result{Failure: &Failure{
		Error:       failureMessage,
		RawResponse: Truncate(cleaned, UICap),
	}}
}

// Truncate caps text at limit characters, appending the truncation marker
// only when the text actually exceeds the limit.
func Truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + truncationMarker
}

func parseable(text string) ([]byte, bool) {
	candidate := strings.TrimSpace(text)
	if candidate == "" || !json.Valid([]byte(candidate)) {
		return nil, false
	}
	return []byte(candidate), true
}

// direct parses the trimmed response verbatim. Succeeds when the model obeyed
// the "output only JSON" instruction exactly.
func direct(text string) ([]byte, bool) {
	return parseable(text)
}

var fenceRE = regexp.MustCompile("(?s)```(?:json)?\n(.*?)\n```")

// fencedBlock scans triple-backtick code fences (optionally tagged json) in
// document order and returns the first fence body that parses.
func fencedBlock(text string) ([]byte, bool) {
	for _, match := range fenceRE.FindAllStringSubmatch(text, -1) {
		if candidate, ok := parseable(match[1]); ok {
			return candidate, true
		}
	}
	return nil, false
}

// outerSlice returns the substring from the first { to the last } inclusive,
// or "" when no such span exists. Shared by the outer-brace and
// trailing-comma strategies.
func outerSlice(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start >= end {
		return ""
	}
	return text[start : end+1]
}

// outerBrace slices between the outermost braces, shedding leading and
// trailing prose around an otherwise well-formed object.
func outerBrace(text string) ([]byte, bool) {
	if sliced := outerSlice(text); sliced != "" {
		return parseable(sliced)
	}
	return nil, false
}

var trailingCommaRE = regexp.MustCompile(`,\s*([}\]])`)

// trailingComma removes commas immediately preceding a closing brace or
// bracket on the outer-brace slice, the single most common model mistake,
// then retries the parse. No other repair is attempted; balancing unmatched
// brackets is a stated boundary of recoverability.
func trailingComma(text string) ([]byte, bool) {
	sliced := outerSlice(text)
	if sliced == "" {
		return nil, false
	}
	return parseable(trailingCommaRE.ReplaceAllString(sliced, "$1"))
}

// lineAccumulation walks the text line by line, accumulating from the first
// line that starts with { and attempting a parse at every accumulated line
// that ends with }. A close brace may belong to a nested object, so a failed
// attempt does not abort the scan; accumulation continues and the parse is
// retried at each subsequent closing line until the text is exhausted.
func lineAccumulation(text string) ([]byte, bool) {
	var acc []string
	accumulating := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !accumulating {
			if !strings.HasPrefix(trimmed, "{") {
				continue
			}
			accumulating = true
		}
		acc = append(acc, line)
		if strings.HasSuffix(trimmed, "}") {
			if candidate, ok := parseable(strings.Join(acc, "\n")); ok {
				return candidate, true
			}
		}
	}
	return nil, false
}
