package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-graphviewer/pkg/adapter"
	"github.com/dd0wney/cluso-graphviewer/pkg/graph"
	"github.com/dd0wney/cluso-graphviewer/pkg/viewer"
)

var reportHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))

// communityReport is one row of `graphviewer communities`.
type communityReport struct {
	ID       string       `json:"id"`
	Size     int          `json:"size"`
	Expanded bool         `json:"expanded"`
	Reason   graph.Reason `json:"reason"`
	Members  []string     `json:"members"`
}

func newCommunitiesCmd(root *rootOptions) *cobra.Command {
	var (
		start   string
		explore []string
		limit   int
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "communities",
		Short: "Explore from a start node and report the communities formed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			// No loop runs here, so the joiner must answer inline.
			cfg.Adapter.Async = false
			if limit > 0 {
				cfg.Adapter.NodeLimit = limit
				cfg.Zoom.Enabled = false
			}

			v, err := newViewer(cfg, cfg.Logger(), nil)
			if err != nil {
				return err
			}
			defer v.Close()

			reports, err := exploreCommunities(v, start, explore)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reports)
			}
			writeReports(cmd.OutOrStdout(), v, reports)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "start node id (random when empty)")
	cmd.Flags().StringSliceVar(&explore, "explore", nil, "node or community ids to explore after loading, in order")
	cmd.Flags().IntVar(&limit, "limit", 0, "rendered node budget (disables zoom)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// exploreCommunities drives v synchronously: load start, explore each id,
// then collect the communities in id order.
func exploreCommunities(v *viewer.GraphViewer, start string, explore []string) ([]communityReport, error) {
	var (
		res     adapter.LoadResult
		loadErr error
	)
	cb := func(r adapter.LoadResult, err error) { res, loadErr = r, err }
	if start == "" {
		v.LoadGraphWithRandomStart(cb)
	} else {
		v.LoadGraph(start, cb)
	}
	if loadErr != nil {
		return nil, loadErr
	}
	if res.NotFound() {
		return nil, fmt.Errorf("start node %q: %w", start, graph.ErrNodeNotFound)
	}

	for _, id := range explore {
		var exploreErr error
		v.Explore(id, func(err error) { exploreErr = err })
		if exploreErr != nil {
			return nil, fmt.Errorf("explore %q: %w", id, exploreErr)
		}
	}

	communities := v.Source().Core().Communities()
	reports := make([]communityReport, 0, len(communities))
	for _, c := range communities {
		reports = append(reports, communityReport{
			ID:       c.ID,
			Size:     c.Size(),
			Expanded: c.IsExpanded(),
			Reason:   c.Reason,
			Members:  c.MemberIDs(),
		})
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].ID < reports[j].ID })
	return reports, nil
}

func writeReports(w io.Writer, v *viewer.GraphViewer, reports []communityReport) {
	core := v.Source().Core()
	fmt.Fprintln(w, reportHeader.Render(fmt.Sprintf("%d nodes, %d edges, %d rendered (limit %d)",
		v.Store().NodeCount(), v.Store().EdgeCount(), core.RenderedNodeCount(), core.NodeLimit())))
	if len(reports) == 0 {
		fmt.Fprintln(w, "no communities")
		return
	}
	for _, r := range reports {
		state := "collapsed"
		if r.Expanded {
			state = "expanded"
		}
		reason := r.Reason.Type
		if r.Reason.Key != "" {
			reason += " " + r.Reason.Key + "=" + r.Reason.Value
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", r.ID, r.Size, state, reason, strings.Join(r.Members, ","))
	}
}
