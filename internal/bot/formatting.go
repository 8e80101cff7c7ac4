package bot

import "strings"

var markdownMarkers = strings.NewReplacer("*", "", "`", "")

// stripMarkdown removes the emphasis and code markers used by the static
// texts so they read cleanly without a parse mode.
func stripMarkdown(s string) string {
	return markdownMarkers.Replace(s)
}

// SplitMessage splits a message into chunks of at most maxLen runes,
// preferring to cut after a newline in the second half of a chunk.
// Concatenating the chunks gives back the original message.
func SplitMessage(msg string, maxLen int) []string {
	if msg == "" {
		return nil
	}
	if maxLen <= 0 {
		return []string{msg}
	}

	runes := []rune(msg)
	var chunks []string
	for len(runes) > maxLen {
		cut := maxLen
		for i := maxLen - 1; i > maxLen/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	return append(chunks, string(runes))
}
