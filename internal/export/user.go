package export

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/dgallion1/chatexport/internal/dom"
	"github.com/dgallion1/chatexport/internal/markdown"
)

var (
	profileInitials = regexp.MustCompile(`^[A-Z]{1,3}[ \t]*\n\s*`)
	speakerLabel    = regexp.MustCompile(`(?i)^(User:|Claude:)\s*`)
)

// UserText converts a user message body to Markdown and strips UI residue
// (avatar initials, speaker labels).
func UserText(n dom.Node) (string, error) {
	var buf strings.Builder
	if err := dom.Render(&buf, n); err != nil {
		return "", fmt.Errorf("render user message: %w", err)
	}
	md, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert user message: %w", err)
	}
	return cleanUserText(md), nil
}

func cleanUserText(s string) string {
	s = strings.TrimSpace(s)
	s = profileInitials.ReplaceAllString(s, "")
	s = speakerLabel.ReplaceAllString(s, "")
	return markdown.Normalize(s)
}
