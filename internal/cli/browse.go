package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/store"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// GraphListModel - Interactive graph selection
// =============================================================================

// GraphListModel is the bubbletea model for interactive graph selection.
type GraphListModel struct {
	Docs     []store.Document
	Cursor   int
	Selected *store.Document
	Height   int
	Offset   int
}

// NewGraphListModel creates a new graph list model.
func NewGraphListModel(docs []store.Document) GraphListModel {
	return GraphListModel{
		Docs:   docs,
		Height: 15,
	}
}

func (m GraphListModel) Init() tea.Cmd {
	return nil
}

func (m GraphListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Docs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			doc := m.Docs[m.Cursor]
			m.Selected = &doc
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m GraphListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Workflow Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ render  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Docs) {
		end = len(m.Docs)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Docs[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			d.Name,
			shortID(d.ID),
			strconv.Itoa(d.NodeCount),
			strconv.Itoa(d.EdgeCount),
			formatRelativeTime(d.CapturedAt),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "ID", "Nodes", "Edges", "Captured").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			actualIdx := m.Offset + row
			if actualIdx >= len(m.Docs) {
				return lipgloss.NewStyle()
			}
			isCurrent := actualIdx == m.Cursor

			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorDim)
			}

			if isCurrent {
				if col < 3 {
					return base.Foreground(colorCyan).Bold(true)
				}
				return base.Bold(true)
			}
			if col < 3 {
				return base.Foreground(colorWhite)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Docs))))

	return b.String()
}

// =============================================================================
// browse command
// =============================================================================

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		configPath string
		formatsStr string
		output     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick a captured graph and render it",
		Long: `Browse captured workflow graphs interactively and render the selected
one. Arrow keys or j/k navigate, enter renders, q quits without
rendering.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), configPath, formatsStr, output, limit)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to TOML config file")
	flags.StringVarP(&formatsStr, "formats", "f", "", "comma-separated formats for the selected graph (default: mermaid)")
	flags.StringVarP(&output, "output", "o", "", "output base path or directory (default: the graph name)")
	flags.IntVar(&limit, "limit", store.DefaultListLimit, "maximum number of graphs to browse")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, configPath, formatsStr, output string, limit int) error {
	st, err := openStore(ctx, configPath)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	docs, err := st.List(ctx, limit)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		printInfo("No captured graphs to browse")
		printNextStep("Capture one", "curl -X POST localhost:8080/v1/graphs -d @payload.json")
		return nil
	}

	p := tea.NewProgram(NewGraphListModel(docs))
	final, err := p.Run()
	if err != nil {
		return err
	}
	result, ok := final.(GraphListModel)
	if !ok || result.Selected == nil {
		return nil
	}

	// List results omit payloads, so fetch the full document.
	doc, err := st.Get(ctx, result.Selected.ID)
	if err != nil {
		return err
	}
	g, err := workflow.Parse(doc.Payload)
	if err != nil {
		return err
	}

	formats := parseFormats(formatsStr)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	opts := pipeline.Options{
		Graph:    g,
		Name:     doc.Name,
		UseCache: true,
		Formats:  formats,
	}

	base := strings.ReplaceAll(doc.Name, "/", "-")
	if output != "" {
		base = outputBase("", output, doc.Name)
	}
	return c.executeAndWrite(ctx, opts, base, false)
}
