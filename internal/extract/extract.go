// Package extract recovers structured content from generation backend output.
//
// The backend is instructed to emit a JSON envelope with text, fileTree,
// buildCommand and startCommand fields, but frequently gets the escaping
// wrong, wraps the object in a markdown fence, or truncates it. The chain
// here degrades stage by stage so at minimum the human-readable text
// survives, and the file tree is recovered independently of the outer
// object's validity.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/fr-yash/CoBuilderr/internal/metrics"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

// Result is the normalized outcome of one extraction. It is produced once
// per generation and never mutated afterwards.
type Result struct {
	Text         string
	FileTree     models.FileTree
	BuildCommand *models.Command
	StartCommand *models.Command
}

// envelope mirrors the JSON object the backend is instructed to emit.
type envelope struct {
	Text         string          `json:"text"`
	FileTree     models.FileTree `json:"fileTree"`
	BuildCommand *models.Command `json:"buildCommand"`
	StartCommand *models.Command `json:"startCommand"`
}

// textFieldRegex matches a JSON-shaped "text" field, tolerating escaped
// quotes and backslashes inside the value.
var textFieldRegex = regexp.MustCompile(`"text"\s*:\s*"((?:[^"\\]|\\.)*)"`)

// Extract turns raw model output into a Result. It never fails: on fully
// unstructured input the entire raw string becomes the text.
func Extract(raw string) Result {
	cleaned := stripFences(raw)

	var env envelope
	if err := json.Unmarshal([]byte(cleaned), &env); err == nil {
		if env.Text == "" {
			// Valid JSON but not the envelope we asked for.
			metrics.ExtractionsTotal.WithLabelValues("plain").Inc()
			return Result{Text: raw}
		}
		metrics.ExtractionsTotal.WithLabelValues("strict").Inc()
		return Result{
			Text:         strings.ReplaceAll(env.Text, `\n`, "\n"),
			FileTree:     env.FileTree,
			BuildCommand: env.BuildCommand,
			StartCommand: env.StartCommand,
		}
	}

	if m := textFieldRegex.FindStringSubmatch(raw); m != nil && m[1] != "" {
		metrics.ExtractionsTotal.WithLabelValues("regex").Inc()
		return Result{
			Text:     unescape(m[1]),
			FileTree: scanFileTree(raw),
		}
	}

	metrics.ExtractionsTotal.WithLabelValues("plain").Inc()
	return Result{Text: raw}
}

// stripFences removes a markdown code fence wrapping the entire response,
// with or without a language tag.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") && strings.HasSuffix(s[7:], "```") {
		return strings.TrimSpace(s[7 : len(s)-3])
	}
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s[3:], "```") {
		return strings.TrimSpace(s[3 : len(s)-3])
	}
	return s
}

// unescape reverses JSON string escaping for the regex-extracted text.
// Replacement order matters: quotes, then backslashes, then whitespace.
func unescape(s string) string {
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return s
}

// scanState tracks where the brace scanner is relative to string literals.
type scanState int

const (
	stateNormal scanState = iota
	stateInString
	stateEscaped
)

// scanFileTree locates the value of the "fileTree" key in raw and returns
// it if the consumed substring parses as a tree. Braces and quotes inside
// string literals do not affect depth tracking. Returns nil on any
// malformed input; it never propagates an error.
func scanFileTree(raw string) models.FileTree {
	start := strings.Index(raw, `"fileTree"`)
	if start == -1 {
		return nil
	}
	after := raw[start:]
	colon := strings.Index(after, ":")
	if colon == -1 {
		return nil
	}
	body := strings.TrimSpace(after[colon+1:])

	state := stateNormal
	depth := 0
	end := -1
scan:
	for i := 0; i < len(body); i++ {
		switch state {
		case stateEscaped:
			state = stateInString
		case stateInString:
			switch body[i] {
			case '\\':
				state = stateEscaped
			case '"':
				state = stateNormal
			}
		default:
			switch body[i] {
			case '"':
				state = stateInString
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i + 1
					break scan
				}
			}
		}
	}
	if end == -1 {
		return nil
	}

	var tree models.FileTree
	if err := json.Unmarshal([]byte(body[:end]), &tree); err != nil {
		return nil
	}
	return tree
}
