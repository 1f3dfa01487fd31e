package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowscope/flowscope/pkg/errors"
	pkgio "github.com/flowscope/flowscope/pkg/io"
	"github.com/flowscope/flowscope/pkg/pipeline"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// formatExt maps each output format to its artifact file extension.
// Flow diagrams get a compound extension so they never collide with
// the JSON payload they were rendered from.
var formatExt = map[pipeline.Format]string{
	pipeline.FormatMermaid: "mmd",
	pipeline.FormatFlow:    "flow.json",
	pipeline.FormatDOT:     "dot",
	pipeline.FormatSVG:     "svg",
	pipeline.FormatPNG:     "png",
	pipeline.FormatPDF:     "pdf",
}

// renderOpts bundles the flag values for the render command.
type renderOpts struct {
	output     string
	formats    string
	name       string
	direction  string
	subdir     string
	conditions bool
	autoLayout bool
	base64     bool
	noCache    bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a workflow payload to diagram artifacts",
		Long: `Render a captured workflow payload as one or more diagram artifacts.

The payload is read from the given file, or from stdin when the file is
omitted or "-". Use --base64 for payloads exported as base64-wrapped
JSON.

Artifacts are written next to the input by default. Use -o to pick a
different base path or directory, or "-o -" to stream a single format
to stdout.`,
		Example: `  flowscope render trace.json
  flowscope render trace.json --formats mermaid,svg,flow --layout
  agent export --run 42 | flowscope render - --base64 -o run42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output base path or directory (default: derived from input)")
	flags.StringVarP(&opts.formats, "formats", "f", "", "comma-separated formats: mermaid,flow,dot,svg,png,pdf (default: mermaid)")
	flags.StringVar(&opts.name, "name", "", "workflow name used in headers and cache keys")
	flags.StringVar(&opts.direction, "direction", "", "flow direction: TB, BT, LR, or RL (default: LR)")
	flags.StringVar(&opts.subdir, "subgraph-direction", "", "direction inside container blocks (default: TB)")
	flags.BoolVar(&opts.conditions, "conditions", true, "show edge condition labels")
	flags.BoolVar(&opts.autoLayout, "layout", false, "run auto-layout for flow output")
	flags.BoolVar(&opts.base64, "base64", false, "treat the payload as base64-encoded JSON")
	flags.BoolVar(&opts.noCache, "no-cache", false, "bypass the artifact cache")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	payload, err := pkgio.ReadPayload(input)
	if err != nil {
		return err
	}

	g, err := parsePayload(payload, opts.base64)
	if err != nil {
		reportViolations(err)
		return err
	}

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	base := outputBase(input, opts.output, opts.name)
	if base == "" && len(formats) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "stdout output supports a single format")
	}

	pOpts := pipeline.Options{
		Graph:             g,
		Name:              opts.name,
		Direction:         opts.direction,
		SubgraphDirection: opts.subdir,
		AutoLayout:        opts.autoLayout,
		UseCache:          !opts.noCache,
		Formats:           formats,
	}
	if !opts.conditions {
		show := false
		pOpts.ShowConditions = &show
	}

	return c.executeAndWrite(ctx, pOpts, base, opts.noCache)
}

// executeAndWrite runs the pipeline under a spinner and writes one
// artifact per requested format. An empty base streams the single
// artifact to stdout and keeps decoration off it.
func (c *CLI) executeAndWrite(ctx context.Context, opts pipeline.Options, base string, noCache bool) error {
	runner := c.newRunner(noCache)
	defer runner.Close()

	spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", displayName(opts.Name)))
	spin.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return ctx.Err()
		}
		spin.StopWithError(fmt.Sprintf("Render failed: %v", err))
		return err
	}
	spin.Stop()

	if base != "" {
		if err := pkgio.EnsureDir(filepath.Dir(base)); err != nil {
			return err
		}
	}

	var paths []string
	for _, format := range opts.Formats {
		path := ""
		if base != "" {
			path = base + "." + formatExt[format]
		}
		if err := pkgio.WriteArtifact(path, res.Artifacts[format]); err != nil {
			return err
		}
		if path != "" {
			paths = append(paths, path)
		}
	}

	if base == "" {
		// Artifact went to stdout; route warnings to the logger instead.
		for _, w := range res.Warnings {
			c.Logger.Warn(w.Message, "element", w.ElementID)
		}
		return nil
	}

	printSuccess("Rendered %s", res.Name)
	for _, p := range paths {
		printFile(p)
	}
	for _, w := range res.Warnings {
		printWarning("%s", w.Message)
	}
	printStats(res.Stats.Nodes, res.Stats.Edges, len(res.Warnings), res.Cache.Hit)
	return nil
}

// parsePayload decodes a payload as raw or base64-wrapped workflow JSON.
func parsePayload(payload []byte, forceBase64 bool) (*workflow.Graph, error) {
	if forceBase64 {
		return workflow.ParseBase64(strings.TrimSpace(string(payload)))
	}
	return workflow.Parse(payload)
}

// reportViolations prints validation violations as detail lines so the
// user sees every problem, not just the first.
func reportViolations(err error) {
	var verr *errors.ValidationError
	if !stderrors.As(err, &verr) {
		return
	}
	printError("Invalid workflow graph")
	for _, v := range verr.Violations {
		printDetail("%s: %s", v.Field, v.Message)
	}
}

// outputBase resolves the base path that artifacts are written to,
// before the per-format extension is appended. An empty return means
// stdout.
func outputBase(input, output, name string) string {
	stem := name
	if stem == "" {
		stem = pipeline.DefaultName
	}
	if input != "" && input != pkgio.StdinPath {
		stem = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}

	switch {
	case output == pkgio.StdinPath:
		return ""
	case output == "":
		if input == "" || input == pkgio.StdinPath {
			return stem
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	case strings.HasSuffix(output, string(filepath.Separator)) || isDir(output):
		return filepath.Join(output, stem)
	default:
		if ext := filepath.Ext(output); ext != "" {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func displayName(name string) string {
	if name != "" {
		return name
	}
	return pipeline.DefaultName
}
