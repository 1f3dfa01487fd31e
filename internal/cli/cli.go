// Package cli implements the flowscope command-line interface.
//
// Commands cover the workflow observability lifecycle: render turns a
// captured payload into diagram artifacts, serve runs the HTTP API that
// backs the dashboard, graphs manages stored captures, browse picks one
// interactively, and cache maintains the local artifact cache.
//
// Commands are built with cobra and log through charmbracelet/log.
// The --verbose (-v) flag switches to debug-level output.
package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/internal/config"
	"github.com/flowscope/flowscope/pkg/buildinfo"
	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/layout/layered"
	"github.com/flowscope/flowscope/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "flowscope"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowscope renders AI workflow executions as diagrams",
		Long:         `Flowscope is an observability toolkit for AI workflow executions: it validates captured workflow graphs and renders them as Mermaid, DOT, SVG, or interactive flow diagrams, from the command line or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.graphsCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The artifact cache
// degrades to a no-op when the cache directory cannot be opened, so
// rendering never fails on cache problems.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	return pipeline.NewRunner(newCache(noCache), &layered.Engine{}, c.Logger)
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	artifacts, err := config.CacheConfig{Backend: config.CacheFile}.Open()
	if err != nil {
		return cache.NewNullCache()
	}
	return artifacts
}

// =============================================================================
// Format Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into pipeline formats.
func parseFormats(s string) []pipeline.Format {
	if s == "" {
		return []pipeline.Format{pipeline.FormatMermaid}
	}
	parts := strings.Split(s, ",")
	formats := make([]pipeline.Format, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, pipeline.Format(p))
		}
	}
	return formats
}
