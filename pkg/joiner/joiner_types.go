package joiner

import (
	"errors"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
	"github.com/dd0wney/cluso-graphviewer/pkg/metrics"
)

// Common sentinel errors
var (
	ErrUnknownCommand = errors.New("unknown joiner command")
	ErrMissingID      = errors.New("edge command requires source and target")
)

// Command names a joiner operation in the message protocol.
type Command string

const (
	CmdInsertEdge   Command = "insertEdge"
	CmdDeleteEdge   Command = "deleteEdge"
	CmdGetCommunity Command = "getCommunity"
	CmdSetup        Command = "setup"
	CmdGetBest      Command = "getBest"
	CmdReset        Command = "reset"
)

// Request is a single joiner command.
type Request struct {
	Cmd    Command
	Source string // edge commands
	Target string // edge commands
	Limit  int    // getCommunity, getBest: maximum merged size, 0 for none
	Focus  string // getCommunity: optional node to cluster away from
}

// Response carries the result of a Request. Community is nil when no
// community qualifies; Best is nil when no positive merge remains.
type Response struct {
	Cmd       Command
	Community *Community
	Best      *Pair
}

// Community is a group of node ids produced by greedy merging together with
// the modularity gained by building it.
type Community struct {
	Nodes []string `json:"nodes"`
	Q     float64  `json:"q"`
}

// Pair is a candidate merge of community L into community S.
type Pair struct {
	SID string  `json:"sID"`
	LID string  `json:"lID"`
	Val float64 `json:"val"`
}

// Degree holds raw in/out edge counts of a node.
type Degree struct {
	In  int
	Out int
}

type share struct {
	In  float64
	Out float64
}

// Option configures a Joiner.
type Option func(*Joiner)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(j *Joiner) { j.logger = l }
}

// WithMetrics records per-command timings.
func WithMetrics(r *metrics.Registry) Option {
	return func(j *Joiner) { j.metrics = r }
}
