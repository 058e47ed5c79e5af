package document

import "strings"

// Split breaks text into chunks on blank lines, trimming each chunk and
// dropping empty ones.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n\n")
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			chunks = append(chunks, p)
		}
	}
	return chunks
}
