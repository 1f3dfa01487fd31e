package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/internal/config"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/store"
)

// prefixSearchLimit bounds how many documents an abbreviated ID is
// matched against.
const prefixSearchLimit = 1000

// graphsCommand creates the graphs command group.
func (c *CLI) graphsCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "Manage captured workflow graphs",
		Long: `List, inspect, and remove workflow graphs captured through the API.

The store backend comes from the TOML config given with --config. The
default in-memory store holds nothing between processes, so point
--config at the server's config file to work against its store.`,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")

	cmd.AddCommand(c.graphsListCommand(&configPath))
	cmd.AddCommand(c.graphsShowCommand(&configPath))
	cmd.AddCommand(c.graphsRemoveCommand(&configPath))

	return cmd
}

// graphsListCommand creates the "graphs list" subcommand.
func (c *CLI) graphsListCommand(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captured graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			docs, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				printInfo("No captured graphs")
				printNextStep("Capture one", "curl -X POST localhost:8080/v1/graphs -d @payload.json")
				return nil
			}

			fmt.Println(graphTable(docs))
			printNextStep("Render one interactively", appName+" browse")
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", store.DefaultListLimit, "maximum number of graphs to list")
	return cmd
}

// graphsShowCommand creates the "graphs show" subcommand.
func (c *CLI) graphsShowCommand(configPath *string) *cobra.Command {
	var payloadOnly bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one captured graph",
		Long: `Show metadata for one captured graph. IDs may be abbreviated to a
unique prefix. With --payload, only the stored workflow JSON is printed
so it can be piped into other tools.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			doc, err := resolveGraphID(ctx, st, args[0])
			if err != nil {
				return err
			}

			if payloadOnly {
				var buf bytes.Buffer
				if err := json.Indent(&buf, doc.Payload, "", "  "); err != nil {
					fmt.Println(string(doc.Payload))
					return nil
				}
				fmt.Println(buf.String())
				return nil
			}

			printKeyValue("ID", doc.ID)
			printKeyValue("Name", doc.Name)
			printKeyValue("Nodes", strconv.Itoa(doc.NodeCount))
			printKeyValue("Edges", strconv.Itoa(doc.EdgeCount))
			printKeyValue("Captured", doc.CapturedAt.Format(time.RFC3339))
			printNewline()
			printNextStep("Render it", fmt.Sprintf("%s browse", appName))
			return nil
		},
	}

	cmd.Flags().BoolVar(&payloadOnly, "payload", false, "print only the stored payload JSON")
	return cmd
}

// graphsRemoveCommand creates the "graphs rm" subcommand.
func (c *CLI) graphsRemoveCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a captured graph",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, *configPath)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			doc, err := resolveGraphID(ctx, st, args[0])
			if err != nil {
				return err
			}
			if err := st.Delete(ctx, doc.ID); err != nil {
				return err
			}

			printSuccess("Removed %s (%s)", doc.Name, shortID(doc.ID))
			return nil
		},
	}
}

// openStore opens the configured graph store. Callers own the Close.
func openStore(ctx context.Context, configPath string) (store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return cfg.Store.Open(ctx)
}

// resolveGraphID resolves a full or abbreviated graph ID to its
// document. Abbreviations must match exactly one stored graph.
func resolveGraphID(ctx context.Context, st store.Store, id string) (store.Document, error) {
	doc, err := st.Get(ctx, id)
	if err == nil {
		return doc, nil
	}
	if !stderrors.Is(err, store.ErrNotFound) {
		return store.Document{}, err
	}

	docs, err := st.List(ctx, prefixSearchLimit)
	if err != nil {
		return store.Document{}, err
	}

	var matchID string
	matches := 0
	for _, d := range docs {
		if len(d.ID) >= len(id) && d.ID[:len(id)] == id {
			matchID = d.ID
			matches++
		}
	}

	switch matches {
	case 0:
		return store.Document{}, errors.New(errors.ErrCodeGraphNotFound, "graph %s not found", id)
	case 1:
		return st.Get(ctx, matchID)
	default:
		return store.Document{}, errors.New(errors.ErrCodeInvalidID, "id %s is ambiguous (%d matches)", id, matches)
	}
}

// graphTable renders stored graph metadata as a bordered table.
func graphTable(docs []store.Document) string {
	rows := make([][]string, len(docs))
	for i, d := range docs {
		rows[i] = []string{
			shortID(d.ID),
			d.Name,
			strconv.Itoa(d.NodeCount),
			strconv.Itoa(d.EdgeCount),
			formatRelativeTime(d.CapturedAt),
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Nodes", "Edges", "Captured").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col >= 2 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}

// shortID abbreviates a UUID for display. Abbreviated IDs resolve back
// through resolveGraphID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatRelativeTime renders a capture time as a friendly age.
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
