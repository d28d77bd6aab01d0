// Package search resolves free-text queries against notes with a linear scan.
package search

import (
	"strings"
	"unicode/utf8"

	"github.com/k3a/html2text"

	"notekeeper/internal/notes"
)

// Resolver supplies decrypted plaintext for an encrypted note. ok=false means
// the content is unavailable and only title and tags are matched.
type Resolver func(n notes.Note) (plaintext string, ok bool)

// PlainText strips markup from note content.
func PlainText(markup string) string {
	return html2text.HTML2Text(markup)
}

// Search returns the notes whose title, stripped content or any tag contains
// query, ignoring case. A blank query matches nothing. Results keep input
// order.
func Search(query string, list []notes.Note, resolve Resolver) []notes.Note {
	out := []notes.Note{}
	if strings.TrimSpace(query) == "" {
		return out
	}

	needle := strings.ToLower(query)
	for _, n := range list {
		if matches(needle, n, resolve) {
			out = append(out, n)
		}
	}
	return out
}

func matches(needle string, n notes.Note, resolve Resolver) bool {
	if strings.Contains(strings.ToLower(n.Title), needle) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}

	content := n.Content
	if n.IsEncrypted {
		if resolve == nil {
			return false
		}
		plain, ok := resolve(n)
		if !ok {
			return false
		}
		content = plain
	}
	return strings.Contains(strings.ToLower(PlainText(content)), needle)
}

// previewLen is the card preview length in runes.
const previewLen = 150

// Preview returns the card preview of plain content: the first 150 runes of
// the stripped text, with "..." when truncated.
func Preview(markup string) string {
	text := strings.TrimSpace(PlainText(markup))
	if utf8.RuneCountInString(text) <= previewLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:previewLen]) + "..."
}
