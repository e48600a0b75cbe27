package server

import (
	"context"
	"net/http"
	"time"

	"github.com/plantworks/leantwin/graph"
	"github.com/plantworks/leantwin/hierarchy"
	"github.com/plantworks/leantwin/tracker"
)

// trackerWait bounds how long a synchronous handler waits for tracker
// work before giving up on the response (the work itself keeps
// running).
const trackerWait = 30 * time.Second

// submitGraphBuild runs a neighborhood build on the tracker and
// broadcasts the finished graph to every client.
func (s *TwinServer) submitGraphBuild(selection string) (tracker.Handle, error) {
	client, err := s.session.Client()
	if err != nil {
		return "", err
	}

	builder := graph.NewBuilder(client, s.session.Catalog, int(s.verbosity.Load()), s.logger)
	h, err := s.tracker.Submit("graph build", func(ctx context.Context) (any, error) {
		return builder.BuildFromSelection(ctx, selection)
	})
	if err != nil {
		return "", err
	}

	s.tracker.Track(h, func(res tracker.Result) {
		s.broadcastTaskDone(res)
		if g, ok := res.Value.(*graph.Graph); ok && g != nil {
			s.BroadcastGraph(g)
		}
	})
	return h, nil
}

// awaitResult submits work to the tracker and waits for its result, so
// REST handlers can answer synchronously while the blocking call still
// runs on the pool.
func (s *TwinServer) awaitResult(name string, work tracker.Work) (tracker.Result, error) {
	h, err := s.tracker.Submit(name, work)
	if err != nil {
		return tracker.Result{}, err
	}

	done := make(chan tracker.Result, 1)
	s.tracker.Track(h, func(res tracker.Result) {
		done <- res
	})

	select {
	case res := <-done:
		return res, nil
	case <-time.After(trackerWait):
		return tracker.Result{Handle: h, Name: name},
			newTimeoutError(name)
	case <-s.ctx.Done():
		return tracker.Result{}, s.ctx.Err()
	}
}

// HandleGraph builds a graph from a node selection (POST) or returns
// the last broadcast graph (GET).
func (s *TwinServer) HandleGraph(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		g := s.LastGraph()
		if g == nil {
			g = clearedGraph()
		}
		writeJSON(w, http.StatusOK, g)

	case http.MethodPost:
		var req struct {
			Selection string `json:"selection"`
		}
		if readJSON(w, r, &req) != nil {
			return
		}
		h, err := s.submitGraphBuild(req.Selection)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, TaskAccepted{
			Handle: string(h),
			Name:   "graph build",
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// clearedGraph is the empty graph shown before any selection.
func clearedGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{},
		Links: []graph.Link{},
		Meta: graph.Meta{
			GeneratedAt: time.Now(),
			Config: map[string]string{
				"description": "Select nodes to see their neighborhood...",
			},
		},
	}
}

func countTreeNodes(children []hierarchy.Document) int {
	n := len(children)
	for _, c := range children {
		n += countTreeNodes(c.Children)
	}
	return n
}
