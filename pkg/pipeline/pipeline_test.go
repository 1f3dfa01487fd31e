package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/layout"
	"github.com/flowscope/flowscope/pkg/layout/layered"
	"github.com/flowscope/flowscope/pkg/render/nodelink"
	"github.com/flowscope/flowscope/pkg/workflow"
)

const chainPayload = `{
	"v": 1,
	"nodes": [
		{"id": "a", "label": "Fetch", "type": "node"},
		{"id": "b", "label": "Score", "type": "node"},
		{"id": "c", "label": "Publish", "type": "node"}
	],
	"edges": [
		{"id": "e1", "source": "a", "target": "b", "condition": null, "type": "explicit"},
		{"id": "e2", "source": "b", "target": "c", "condition": "ok", "type": "explicit"}
	]
}`

func mustParse(t *testing.T, payload string) *workflow.Graph {
	t.Helper()
	g, err := workflow.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return g
}

func quietRunner(c cache.Cache, engine layout.Engine) *Runner {
	r := NewRunner(c, engine, log.NewWithOptions(io.Discard, log.Options{}))
	r.Measurer = nil // fixed node dimensions keep positions deterministic
	return r
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  Format
		wantErr bool
	}{
		{FormatMermaid, false},
		{FormatFlow, false},
		{FormatDOT, false},
		{FormatSVG, false},
		{FormatPNG, false},
		{FormatPDF, false},
		{"invalid", true},
		{"MERMAID", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]Format{FormatMermaid, FormatSVG}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]Format{FormatMermaid, "invalid"}); err == nil {
		t.Error("invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Graph: mustParse(t, chainPayload)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("valid options should pass: %v", err)
	}

	if opts.Name != DefaultName {
		t.Errorf("Name = %q, want %q", opts.Name, DefaultName)
	}
	if opts.Direction != DefaultDirection {
		t.Errorf("Direction = %q, want %q", opts.Direction, DefaultDirection)
	}
	if opts.SubgraphDirection != DefaultSubgraphDirection {
		t.Errorf("SubgraphDirection = %q, want %q", opts.SubgraphDirection, DefaultSubgraphDirection)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatMermaid {
		t.Errorf("Formats = %v, want [mermaid]", opts.Formats)
	}
	if opts.LayoutTimeout != DefaultLayoutTimeout {
		t.Errorf("LayoutTimeout = %v, want %v", opts.LayoutTimeout, DefaultLayoutTimeout)
	}
	if opts.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, want %v", opts.CacheTTL, DefaultCacheTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidate_MissingGraph(t *testing.T) {
	opts := Options{}
	err := opts.ValidateAndSetDefaults()
	if err == nil {
		t.Fatal("missing graph should fail")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidGraph {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidGraph)
	}
}

func TestOptionsValidate_Direction(t *testing.T) {
	opts := Options{Graph: mustParse(t, chainPayload), Direction: "tb"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("lowercase direction should parse: %v", err)
	}
	if opts.Direction != "TB" {
		t.Errorf("Direction = %q, want normalized %q", opts.Direction, "TB")
	}

	opts = Options{Graph: mustParse(t, chainPayload), Direction: "diagonal"}
	err := opts.ValidateAndSetDefaults()
	if err == nil {
		t.Fatal("unknown direction should fail")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidDirection {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidDirection)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Graph: mustParse(t, chainPayload)}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}

	originalFormats := len(opts.Formats)
	originalDirection := opts.Direction

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validation failed: %v", err)
	}

	if len(opts.Formats) != originalFormats {
		t.Error("Formats changed on second call")
	}
	if opts.Direction != originalDirection {
		t.Error("Direction changed on second call")
	}
}

func TestOptionsConditionsShown(t *testing.T) {
	opts := Options{}
	if !opts.ConditionsShown() {
		t.Error("unset ShowConditions should default to true")
	}

	off := false
	opts.ShowConditions = &off
	if opts.ConditionsShown() {
		t.Error("ShowConditions=false should hide conditions")
	}

	on := true
	opts.ShowConditions = &on
	if !opts.ConditionsShown() {
		t.Error("ShowConditions=true should show conditions")
	}
}

func TestOptionsArtifactKeyOpts(t *testing.T) {
	opts := Options{
		Graph:      mustParse(t, chainPayload),
		AutoLayout: true,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	keyOpts := opts.ArtifactKeyOpts(FormatSVG)
	if keyOpts.Format != "svg" {
		t.Errorf("Format = %q, want %q", keyOpts.Format, "svg")
	}
	if keyOpts.Direction != "LR" {
		t.Errorf("Direction = %q, want %q", keyOpts.Direction, "LR")
	}
	if !keyOpts.AutoLayout {
		t.Error("AutoLayout not carried into key options")
	}
	if !keyOpts.ShowConditions {
		t.Error("ShowConditions not carried into key options")
	}
}

func TestExecute_Mermaid(t *testing.T) {
	r := quietRunner(nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Name:    "scoring",
		Graph:   mustParse(t, chainPayload),
		Formats: []Format{FormatMermaid},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	text := string(result.Artifacts[FormatMermaid])
	if !strings.HasPrefix(text, "flowchart LR\n") {
		t.Errorf("mermaid output missing header:\n%s", text)
	}
	if !strings.Contains(text, "a --> b") {
		t.Errorf("mermaid output missing edge:\n%s", text)
	}
	if !strings.Contains(text, `b -. "ok" .-> c`) {
		t.Errorf("mermaid output missing conditional edge:\n%s", text)
	}

	if result.Name != "scoring" {
		t.Errorf("Name = %q, want %q", result.Name, "scoring")
	}
	if result.Stats.Nodes != 3 || result.Stats.Edges != 2 {
		t.Errorf("stats = %d nodes / %d edges, want 3 / 2", result.Stats.Nodes, result.Stats.Edges)
	}
	if result.Cache.Hit {
		t.Error("Cache.Hit = true without a cache")
	}
	if result.Cache.Key == "" {
		t.Error("Cache.Key is empty, want graph content hash")
	}
}

func TestExecute_DOT(t *testing.T) {
	r := quietRunner(nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Graph:   mustParse(t, chainPayload),
		Formats: []Format{FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	text := string(result.Artifacts[FormatDOT])
	if !strings.Contains(text, "digraph workflow {") {
		t.Errorf("DOT output missing header:\n%s", text)
	}
	if !strings.Contains(text, `"a" -> "b"`) {
		t.Errorf("DOT output missing edge:\n%s", text)
	}
}

func TestExecute_FlowWithLayout(t *testing.T) {
	r := quietRunner(nil, &layered.Engine{})
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Graph:      mustParse(t, chainPayload),
		Formats:    []Format{FormatFlow},
		AutoLayout: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	d, err := nodelink.UnmarshalDiagram(result.Artifacts[FormatFlow])
	if err != nil {
		t.Fatalf("flow artifact is not a diagram: %v", err)
	}
	if len(d.Nodes) != 3 {
		t.Fatalf("diagram has %d nodes, want 3", len(d.Nodes))
	}

	a, b := d.Node("a"), d.Node("b")
	if a == nil || b == nil {
		t.Fatal("diagram missing chain nodes")
	}
	if b.Position.X <= a.Position.X {
		t.Errorf("b.X = %v, want greater than a.X = %v after layout", b.Position.X, a.Position.X)
	}

	for _, w := range result.Warnings {
		if w.Kind == WarnLayoutFallback {
			t.Errorf("unexpected layout fallback warning: %s", w.Message)
		}
	}
}

func TestExecute_FlowLayoutFallback(t *testing.T) {
	r := quietRunner(nil, failEngine{})
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Graph:      mustParse(t, chainPayload),
		Formats:    []Format{FormatFlow},
		AutoLayout: true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want fallback instead of failure", err)
	}

	var fallback bool
	for _, w := range result.Warnings {
		if w.Kind == WarnLayoutFallback {
			fallback = true
		}
	}
	if !fallback {
		t.Error("missing layout-fallback warning")
	}

	d, err := nodelink.UnmarshalDiagram(result.Artifacts[FormatFlow])
	if err != nil {
		t.Fatalf("flow artifact is not a diagram: %v", err)
	}
	for _, n := range d.Nodes {
		if n.Position.X != 0 || n.Position.Y != 0 {
			t.Errorf("node %s positioned at (%v, %v), want unpositioned fallback", n.ID, n.Position.X, n.Position.Y)
		}
	}
}

func TestExecute_CacheRoundTrip(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := quietRunner(c, nil)
	defer r.Close()

	opts := Options{
		Graph:    mustParse(t, chainPayload),
		Formats:  []Format{FormatMermaid, FormatDOT},
		UseCache: true,
	}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.Cache.Hit {
		t.Error("first run reported a cache hit")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.Cache.Hit {
		t.Error("second run should hit the cache")
	}
	if !bytes.Equal(first.Artifacts[FormatMermaid], second.Artifacts[FormatMermaid]) {
		t.Error("cached mermaid artifact differs from rendered one")
	}
	if !bytes.Equal(first.Artifacts[FormatDOT], second.Artifacts[FormatDOT]) {
		t.Error("cached DOT artifact differs from rendered one")
	}
	if first.Cache.Key != second.Cache.Key {
		t.Errorf("cache keys differ: %q vs %q", first.Cache.Key, second.Cache.Key)
	}
}

func TestExecute_WarningsSurfaced(t *testing.T) {
	const dangling = `{
		"v": 1,
		"nodes": [
			{"id": "a", "label": "Fetch", "type": "node"},
			{"id": "b", "label": "Score", "type": "node"}
		],
		"edges": [
			{"id": "e1", "source": "a", "target": "b", "condition": null, "type": "explicit"},
			{"id": "e2", "source": "b", "target": "ghost", "condition": null, "type": "explicit"}
		]
	}`

	r := quietRunner(nil, nil)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Graph:   mustParse(t, dangling),
		Formats: []Format{FormatMermaid},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(result.Warnings))
	}
	if result.Warnings[0].Kind != workflow.WarnDanglingEdge {
		t.Errorf("warning kind = %q, want %q", result.Warnings[0].Kind, workflow.WarnDanglingEdge)
	}
	if result.Stats.Skipped != 1 {
		t.Errorf("Stats.Skipped = %d, want 1", result.Stats.Skipped)
	}

	if strings.Contains(string(result.Artifacts[FormatMermaid]), "ghost") {
		t.Error("dangling edge leaked into mermaid output")
	}
}

func TestExecute_InvalidFormat(t *testing.T) {
	r := quietRunner(nil, nil)
	defer r.Close()

	_, err := r.Execute(context.Background(), Options{
		Graph:   mustParse(t, chainPayload),
		Formats: []Format{"bmp"},
	})
	if err == nil {
		t.Fatal("unknown format should fail")
	}
	if errors.GetCode(err) != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestGraphHash_Stable(t *testing.T) {
	g1 := mustParse(t, chainPayload)
	g2 := mustParse(t, chainPayload)

	if graphHash(g1) != graphHash(g2) {
		t.Error("equal payloads should hash equally")
	}

	other := mustParse(t, `{"v":1,"nodes":[{"id":"x","label":"X","type":"node"}],"edges":[]}`)
	if graphHash(g1) == graphHash(other) {
		t.Error("different payloads should hash differently")
	}
}

// failEngine always errors, driving the fallback path.
type failEngine struct{}

func (failEngine) Apply(ctx context.Context, d *nodelink.Diagram) (*nodelink.Diagram, error) {
	return nil, errors.New(errors.ErrCodeLayout, "layout exploded")
}

var _ layout.Engine = failEngine{}

// Keep the pipeline honest about not mutating options it was handed.
func TestExecute_DoesNotRequireTimeout(t *testing.T) {
	r := quietRunner(nil, &layered.Engine{})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := r.Execute(ctx, Options{
		Graph:         mustParse(t, chainPayload),
		Formats:       []Format{FormatFlow},
		AutoLayout:    true,
		LayoutTimeout: time.Minute,
	}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}
