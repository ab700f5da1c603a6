package recommend

import (
	"strings"
)

// cleanJSONResponse strips markdown fences and trims the reply to the
// outermost JSON object, tolerating prose the model wraps around it.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}

	braceCount := 0
	lastValidBrace := -1
	for i := firstBrace; i < len(response); i++ {
		switch response[i] {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				lastValidBrace = i
			}
		}
		if lastValidBrace != -1 {
			break
		}
	}

	if lastValidBrace == -1 {
		lastBrace := strings.LastIndex(response, "}")
		if lastBrace == -1 || lastBrace <= firstBrace {
			return response
		}
		lastValidBrace = lastBrace
	}

	return strings.TrimSpace(response[firstBrace : lastValidBrace+1])
}

// extractBulletSuggestions pulls suggestion lines out of a plain-text reply.
// Lines beginning with •, - or * count; everything else is conversation.
func extractBulletSuggestions(text string) []string {
	var suggestions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var marker string
		switch {
		case strings.HasPrefix(line, "•"):
			marker = "•"
		case strings.HasPrefix(line, "-"):
			marker = "-"
		case strings.HasPrefix(line, "*"):
			marker = "*"
		default:
			continue
		}
		suggestion := strings.TrimSpace(strings.TrimPrefix(line, marker))
		if suggestion != "" {
			suggestions = append(suggestions, suggestion)
		}
	}
	return suggestions
}
