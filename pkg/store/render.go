package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/gcammarata/wirechat/pkg/models"
)

const (
	historyTimeLayout = "2006-01-02 15:04:05"

	// renderMargin keeps the rendered block safely inside the wire content
	// field even after the trailing ellipsis line is appended.
	renderMargin = 16

	// ellipsisLine terminates a truncated history block.
	ellipsisLine = "...\n"
)

// HistoryLine is one renderable history entry, common to direct and group
// messages.
type HistoryLine struct {
	SentAt int64
	Sender string
	Body   string
}

// DirectHistoryLines adapts direct messages for rendering.
func DirectHistoryLines(msgs []models.DirectMessage) []HistoryLine {
	lines := make([]HistoryLine, len(msgs))
	for i, m := range msgs {
		lines[i] = HistoryLine{SentAt: m.SentAt, Sender: m.Sender, Body: m.Body}
	}
	return lines
}

// GroupHistoryLines adapts group messages for rendering.
func GroupHistoryLines(msgs []models.GroupMessage) []HistoryLine {
	lines := make([]HistoryLine, len(msgs))
	for i, m := range msgs {
		lines[i] = HistoryLine{SentAt: m.SentAt, Sender: m.Sender, Body: m.Body}
	}
	return lines
}

// RenderHistory formats history lines for the wire, one message per line:
//
//	[YYYY-MM-DD HH:MM:SS] sender: body\n
//
// When the rendered block would exceed maxLen minus a small safety margin it
// is truncated at a line boundary and terminated with a final "...\n".
func RenderHistory(lines []HistoryLine, maxLen int) string {
	budget := maxLen - renderMargin

	var b strings.Builder
	for _, line := range lines {
		rendered := fmt.Sprintf("[%s] %s: %s\n",
			time.Unix(line.SentAt, 0).Format(historyTimeLayout), line.Sender, line.Body)
		if b.Len()+len(rendered) > budget {
			b.WriteString(ellipsisLine)
			break
		}
		b.WriteString(rendered)
	}
	return b.String()
}
