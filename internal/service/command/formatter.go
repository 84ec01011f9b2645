package command

import (
	"fmt"
	"strings"
)

// Formatter renders command replies as the Markdown subset both chat surfaces display.
type Formatter struct{}

func (Formatter) Heading(title string) string {
	return fmt.Sprintf("**%s**\n", title)
}

func (Formatter) Done(message string) string {
	return fmt.Sprintf("✅ **%s**\n", message)
}

func (Formatter) Failure(command string, err error) string {
	return fmt.Sprintf("❌ **/%s failed**\n\n**Issue**: %s\n", command, err.Error())
}

func (Formatter) Field(label, value string) string {
	return fmt.Sprintf("**%s**  ›  `%s`\n", label, value)
}

func (Formatter) Bullets(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "› %s\n", item)
	}
	return sb.String()
}

// Numbered uses the same "1. fact" layout as the fact prompts.
func (Formatter) Numbered(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
	}
	return sb.String()
}

func (Formatter) Hint(text string) string {
	return fmt.Sprintf("_%s_\n", text)
}

func (Formatter) Join(sections ...string) string {
	return strings.Join(sections, "\n")
}
