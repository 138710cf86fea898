package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapstyle/pkg/style"
)

// browseCommand creates the interactive catalog browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the style catalog interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewStyleListModel(cat.Records()),
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithOutput(cmd.OutOrStdout()))
			_, err = p.Run()
			return err
		},
	}
}

// =============================================================================
// StyleListModel - Interactive catalog browser
// =============================================================================

// StyleListModel is the bubbletea model of the catalog browser. Records are
// listed in matching order; enter toggles the detail view of the record
// under the cursor.
type StyleListModel struct {
	Records []*style.Record
	Cursor  int
	Offset  int
	Height  int
	Detail  bool
}

// NewStyleListModel creates a browser over records.
func NewStyleListModel(records []*style.Record) StyleListModel {
	return StyleListModel{Records: records, Height: 15}
}

func (m StyleListModel) Init() tea.Cmd {
	return nil
}

func (m StyleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Records))
		case "end", "G":
			m.move(len(m.Records))
		case "enter", " ":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped to the list, and scrolls so the
// cursor stays visible.
func (m *StyleListModel) move(delta int) {
	if len(m.Records) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Records)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the record under the cursor, or nil for an empty list.
func (m StyleListModel) Selected() *style.Record {
	if m.Cursor < 0 || m.Cursor >= len(m.Records) {
		return nil
	}
	return m.Records[m.Cursor]
}

func (m StyleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Style Catalog"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	if len(m.Records) == 0 {
		b.WriteString(StyleWarning.Render("No style records loaded"))
		b.WriteString("\n")
		return b.String()
	}

	if m.Detail {
		printRecord(&b, m.Selected())
		b.WriteString("\n")
		b.WriteString(StyleDim.Render("⏎ back to list"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Records))
	b.WriteString(renderRecordTable(m.Records[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}
