package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/muurk/infoclient/internal/discovery"
	"github.com/muurk/infoclient/internal/protocol"
)

// Summary renders the replies of one discovery round as a table with a short
// payload preview per reply. Reply bytes are never modified.
type Summary struct {
	Replies []*discovery.Response
	Width   int
}

// NewSummary creates a summary for replies
func NewSummary(replies []*discovery.Response) *Summary {
	return &Summary{Replies: replies, Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (s *Summary) SetWidth(width int) *Summary {
	s.Width = width
	return s
}

// Render returns the styled table followed by the payload previews
func (s *Summary) Render() string {
	t := newTable("#", "FROM", "SERVICE", "CMD_RSP", "OPERATION", "ID")

	previews := make([]string, 0, len(s.Replies))
	for _, r := range s.Replies {
		h := r.Header()
		from := "unknown"
		if r.From != nil {
			from = r.From.String()
		}
		t.Row(
			fmt.Sprintf("%d", r.Index+1),
			from,
			fmt.Sprintf("%d", h.Service),
			protocol.CmdRspName(h.CmdRsp),
			protocol.OperationName(h.Operation),
			fmt.Sprintf("%d", h.ID),
		)
		previews = append(previews, PreviewStyle.Render(
			fmt.Sprintf("%d: %s", r.Index+1, Preview(r.Packet.Payload(), PreviewBytes))))
	}

	out := t.Render()
	if len(s.Replies) > 0 {
		out = lipgloss.JoinVertical(lipgloss.Left,
			out,
			TroubleshootingTitleStyle.Render("Payload preview:"),
			strings.Join(previews, "\n"),
		)
	}
	return lipgloss.NewStyle().MaxWidth(max(s.Width, MinTerminalWidth)).Render(out)
}

// String implements fmt.Stringer
func (s *Summary) String() string {
	return s.Render()
}

// Preview formats the first n bytes of b as hex followed by their printable
// ASCII form, e.g. "52 54 2d 4e ... |RT-N|".
func Preview(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}

	var hexPart, asciiPart strings.Builder
	for i, c := range b {
		if i > 0 {
			hexPart.WriteByte(' ')
		}
		fmt.Fprintf(&hexPart, "%02x", c)
		if c >= 32 && c <= 126 {
			asciiPart.WriteByte(c)
		} else {
			asciiPart.WriteByte('.')
		}
	}
	return hexPart.String() + "  |" + asciiPart.String() + "|"
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

// RenderTable renders rows under headers in the reply table style
func RenderTable(headers []string, rows [][]string) string {
	return newTable(headers...).Rows(rows...).Render()
}
