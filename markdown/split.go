package markdown

import (
	"strings"

	"github.com/sathvik-kandimala-2003/major-project/model"
)

// SplitContent segments a message body into alternating text and
// table parts. A line belongs to a table part iff its trimmed form
// starts with a pipe. Parts that trim to nothing are dropped.
func SplitContent(text string) []model.ContentPart {
	var parts []model.ContentPart
	var current []string
	currentType := model.PartText

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, "\n")
		if strings.TrimSpace(content) != "" {
			parts = append(parts, model.ContentPart{Type: currentType, Content: content})
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		lineType := model.PartText
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			lineType = model.PartTable
		}
		if lineType != currentType {
			flush()
			currentType = lineType
		}
		current = append(current, line)
	}
	flush()

	return parts
}
