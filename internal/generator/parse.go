package generator

import (
	"encoding/json"
	"regexp"
	"strings"
)

// parseResult is the outcome of extracting question texts from a model reply.
// FellBack marks that the reply was not a clean JSON array and the questions
// were recovered by the line heuristic instead; callers branch on it rather
// than on errors.
type parseResult struct {
	Questions []string
	FellBack  bool
	Reason    string
}

var lineNumbering = regexp.MustCompile(`^\d+[.)]\s*`)

// parseQuestions first tries the JSON array embedded in content; failing
// that it keeps every line containing a question mark, stripped of leading
// numbering and surrounding quotes.
func parseQuestions(content string) parseResult {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		var questions []string
		if err := json.Unmarshal([]byte(content[start:end+1]), &questions); err == nil {
			return parseResult{Questions: trimEmpty(questions)}
		}
		return parseResult{Questions: extractLines(content), FellBack: true, Reason: "embedded array did not parse"}
	}
	return parseResult{Questions: extractLines(content), FellBack: true, Reason: "no JSON array in response"}
}

func extractLines(content string) []string {
	var questions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		line = lineNumbering.ReplaceAllString(line, "")
		line = strings.Trim(line, `"'`)
		line = strings.TrimSpace(line)
		if line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}

func trimEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
