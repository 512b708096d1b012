package quiz

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// Normalize walks an arbitrary JSON document (already decoded into
// map[string]any) searching for "quiz.info.questions" then "quiz.questions"
// per spec.md 6, and reduces each entry to a validated Question. Questions
// with empty text, fewer than two options, or an out-of-range correct
// index are dropped rather than erroring — a single malformed question must
// not poison the whole pool.
func Normalize(doc map[string]any) []Question {
	raw := findQuestionsList(doc)
	questions := make([]Question, 0, len(raw))
	for i, entry := range raw {
		q, ok := normalizeOne(entry, i)
		if !ok {
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

func findQuestionsList(doc map[string]any) []any {
	if quiz, ok := doc["quiz"].(map[string]any); ok {
		if info, ok := quiz["info"].(map[string]any); ok {
			if qs, ok := info["questions"].([]any); ok {
				return qs
			}
		}
		if qs, ok := quiz["questions"].([]any); ok {
			return qs
		}
	}
	return nil
}

func normalizeOne(entry any, index int) (Question, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Question{}, false
	}
	structure, _ := obj["structure"].(map[string]any)
	if structure == nil {
		structure = obj
	}

	text := stripAndDecode(extractQueryText(structure))
	if text == "" {
		return Question{}, false
	}

	options := extractOptionTexts(structure)
	if len(options) < 2 {
		return Question{}, false
	}

	answerIdx, ok := extractAnswerIndex(structure)
	if !ok || answerIdx < 0 || answerIdx >= len(options) {
		return Question{}, false
	}

	id := fmt.Sprintf("q_%d", index)
	if idVal, ok := obj["_id"].(string); ok && idVal != "" {
		id = idVal
	} else if idVal, ok := obj["id"].(string); ok && idVal != "" {
		id = idVal
	}

	return Question{
		ID:           id,
		Text:         text,
		Options:      options,
		CorrectIndex: answerIdx,
	}, true
}

func extractQueryText(structure map[string]any) string {
	query, ok := structure["query"].(map[string]any)
	if !ok {
		return ""
	}
	text, _ := query["text"].(string)
	return text
}

func extractOptionTexts(structure map[string]any) []string {
	raw, ok := structure["options"].([]any)
	if !ok {
		return nil
	}
	options := make([]string, 0, len(raw))
	for _, o := range raw {
		opt, ok := o.(map[string]any)
		if !ok {
			continue
		}
		text, _ := opt["text"].(string)
		options = append(options, stripAndDecode(text))
	}
	return options
}

func extractAnswerIndex(structure map[string]any) (int, bool) {
	switch v := structure["answer"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// stripAndDecode removes HTML tags via a tokenizer (golang.org/x/net/html)
// and decodes named entities left behind.
func stripAndDecode(s string) string {
	if s == "" {
		return ""
	}
	var sb strings.Builder
	tokenizer := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := tokenizer.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		if tt == xhtml.TextToken {
			sb.Write(tokenizer.Text())
		}
	}
	return strings.TrimSpace(html.UnescapeString(sb.String()))
}
