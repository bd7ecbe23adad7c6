package joiner

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// Handle executes a single command. It is the entry point used when the
// joiner runs behind an asynchronous compute backend.
func (j *Joiner) Handle(ctx context.Context, req Request) (resp Response, err error) {
	start := time.Now()
	defer func() {
		if j.metrics == nil {
			return
		}
		status := "success"
		if err != nil {
			status = "error"
		}
		j.metrics.RecordJoinerRequest(string(req.Cmd), status, time.Since(start))
	}()

	if err := ctx.Err(); err != nil {
		return Response{Cmd: req.Cmd}, err
	}

	resp = Response{Cmd: req.Cmd}
	switch req.Cmd {
	case CmdInsertEdge:
		if req.Source == "" || req.Target == "" {
			return resp, ErrMissingID
		}
		j.InsertEdge(req.Source, req.Target)
	case CmdDeleteEdge:
		if req.Source == "" || req.Target == "" {
			return resp, ErrMissingID
		}
		if !j.DeleteEdge(req.Source, req.Target) {
			j.logger.Debug("delete of unknown edge ignored",
				logging.NodeID(req.Source), logging.String("target", req.Target))
		}
	case CmdSetup:
		j.Setup()
	case CmdReset:
		j.Reset()
	case CmdGetBest:
		if j.comms == nil {
			j.Setup()
		}
		resp.Best = j.GetBest(req.Limit)
	case CmdGetCommunity:
		resp.Community, err = j.getCommunity(ctx, req.Limit, req.Focus)
		if err != nil {
			return resp, err
		}
		size := 0
		if resp.Community != nil {
			size = len(resp.Community.Nodes)
		}
		j.logger.Debug("community computed",
			logging.Count(size), logging.Int("edges", j.m), logging.Latency(time.Since(start)))
	default:
		return resp, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Cmd)
	}
	return resp, nil
}
