package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/layout"
	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/shaper"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
)

const cycleDoc = `{
  "nodes": [
    {"_id": "v/a", "name": "A"},
    {"_id": "v/b", "name": "B"},
    {"_id": "v/c", "name": "C"},
    {"_id": "v/d", "name": "D"}
  ],
  "edges": [
    {"_id": "e/ab", "_from": "v/a", "_to": "v/b"},
    {"_id": "e/bc", "_from": "v/b", "_to": "v/c"},
    {"_id": "e/ca", "_from": "v/c", "_to": "v/a"},
    {"_id": "e/ad", "_from": "v/a", "_to": "v/d"}
  ]
}`

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(cycleDoc), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommunitiesReport(t *testing.T) {
	doc := writeDoc(t)

	out, err := execute(t, "communities", "--source", doc, "--log-level", "error",
		"--start", "v/a", "--explore", "v/b")
	require.NoError(t, err)
	assert.Contains(t, out, "no communities")

	out, err = execute(t, "communities", "--source", doc, "--log-level", "error",
		"--start", "v/a", "--explore", "v/b", "--limit", "3", "--json")
	require.NoError(t, err)

	var reports []communityReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.NotEmpty(t, reports)
	for _, r := range reports {
		assert.Equal(t, len(r.Members), r.Size)
		assert.GreaterOrEqual(t, r.Size, 2)
	}
}

func TestCommunitiesUnknownStart(t *testing.T) {
	_, err := execute(t, "communities", "--source", writeDoc(t), "--log-level", "error", "--start", "v/zzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "v/zzz")
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("source:\n  direction: any\nlog:\n  level: warn\n"), 0o600))

	root := newRootCmd()
	opts := &rootOptions{}
	cmd := newCommunitiesCmd(opts)
	root.AddCommand(cmd)
	require.NoError(t, cmd.Flags().Parse(nil))
	opts.configPath = cfgPath

	cfg, err := opts.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, "any", cfg.Source.Direction)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = execute(t, "communities", "--config", cfgPath, "--direction", "sideways")
	require.Error(t, err)
}

func TestSceneRowsOrdersCommunitiesFirst(t *testing.T) {
	rows := sceneRows(shaper.Scene{Nodes: []shaper.NodeVisual{
		{ID: "v/a", Label: "A", X: 1.4, Y: 2.6},
		{ID: "*community_1", Community: true, Size: 2, Members: []shaper.NodeVisual{
			{ID: "v/b"}, {ID: "v/c"},
		}},
	}})
	require.Len(t, rows, 4)
	assert.Equal(t, "*community_1", rows[0][0])
	assert.Equal(t, "2", rows[0][2])
	assert.Equal(t, "  v/b", rows[1][0])
	assert.Equal(t, "v/a", rows[3][0])
	assert.Equal(t, "1", rows[3][3])
	assert.Equal(t, "3", rows[3][4])
}

func TestModelViewAndKeys(t *testing.T) {
	m := initialModel(testContext(t), nil)
	next, _ := m.Update(sceneMsg{scene: shaper.Scene{
		Scale: 0.5,
		Nodes: []shaper.NodeVisual{{ID: "v/a", Label: "A"}},
	}})
	m = next.(model)
	view := m.View()
	assert.Contains(t, view, "Nodes:        1")
	assert.Contains(t, view, "0.50")

	next, _ = m.Update(statusMsg{text: "loaded v/a"})
	m = next.(model)
	assert.True(t, m.loaded)
	assert.True(t, strings.Contains(m.View(), "loaded v/a"))

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.False(t, m.input.Focused())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
}

func TestWaitForChangeFoldsBursts(t *testing.T) {
	events := make(chan graph.Event, 4)
	events <- graph.Event{Kind: graph.NodeAdded, ID: "v/a"}
	events <- graph.Event{Kind: graph.NodeAdded, ID: "v/b"}
	events <- graph.Event{Kind: graph.EdgeAdded, ID: "e/ab"}

	msg, ok := waitForChange(events)().(graphChangedMsg)
	require.True(t, ok)
	assert.Equal(t, 3, msg.count)
	assert.Equal(t, graph.EdgeAdded, msg.kind)

	close(events)
	assert.Nil(t, waitForChange(events)())
}

func TestGraphChangeTriggersRefresh(t *testing.T) {
	m := initialModel(testContext(t), nil)
	m.events = make(chan graph.Event)
	_, cmd := m.Update(graphChangedMsg{kind: graph.NodeAdded, count: 1})
	require.NotNil(t, cmd)
}

func TestDissolveNeedsSelection(t *testing.T) {
	m := initialModel(testContext(t), nil)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	require.NotNil(t, cmd)
	msg, ok := cmd().(statusMsg)
	require.True(t, ok)
	assert.Error(t, msg.err)
}

func TestDissolveCommand(t *testing.T) {
	v, err := viewer.New(viewer.JSONFile(writeDoc(t)), viewer.Config{Layouter: layout.DefaultConfig()},
		viewer.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	t.Cleanup(v.Close)
	ctx, cancel := context.WithCancel(testContext(t))
	defer cancel()
	go func() { _ = v.Run(ctx) }()
	require.NoError(t, loadStart(ctx, v, "v/a"))

	var (
		c    *graph.CommunityNode
		cerr error
	)
	require.NoError(t, v.Query(ctx, func() {
		c, cerr = v.Source().Core().CollapseCommunity([]string{"v/b", "v/d"}, graph.Reason{Type: graph.ReasonModular})
	}))
	require.NoError(t, cerr)

	m := initialModel(ctx, v)
	msg := m.dissolve(c.ID)().(statusMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, "dissolved "+c.ID, msg.text)

	msg = m.dissolve("v/a")().(statusMsg)
	require.ErrorIs(t, msg.err, graph.ErrNotCommunity)
}

// testContext stands in for testing.T.Context (Go 1.24+): the returned
// context is cancelled when the test's cleanup runs.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
