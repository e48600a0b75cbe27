package server

import (
	"time"

	"github.com/plantworks/leantwin/graph"
	"github.com/plantworks/leantwin/tracker"
)

type broadcastReqType int

const (
	reqGraph broadcastReqType = iota
	reqMessage
	reqClose
)

// broadcastRequest is one unit of work for the broadcast worker. The
// worker is the only goroutine that sends on client channels, which
// keeps sends and close calls from racing.
type broadcastRequest struct {
	reqType  broadcastReqType
	graph    *graph.Graph
	msg      interface{}
	client   *Client // for reqClose
	clientID string  // non-empty: deliver to this client only
}

// runBroadcastWorker owns every client channel send. Slow clients get
// evicted instead of blocking the rest.
func (s *TwinServer) runBroadcastWorker() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case req := <-s.broadcastReq:
			switch req.reqType {
			case reqClose:
				req.client.close()
			case reqGraph:
				s.deliverGraph(req)
			case reqMessage:
				s.deliverMessage(req)
			}
		}
	}
}

func (s *TwinServer) deliverGraph(req *broadcastRequest) {
	for _, client := range s.targetClients(req.clientID) {
		select {
		case client.send <- req.graph:
		default:
			s.broadcastDrops.Add(1)
			s.removeSlowClient(client)
		}
	}
}

func (s *TwinServer) deliverMessage(req *broadcastRequest) {
	for _, client := range s.targetClients(req.clientID) {
		select {
		case client.sendMsg <- req.msg:
		default:
			s.broadcastDrops.Add(1)
			s.removeSlowClient(client)
		}
	}
}

// targetClients snapshots the recipients for one request: everyone, or
// the single client named by id.
func (s *TwinServer) targetClients(id string) []*Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		if id != "" && client.id != id {
			continue
		}
		out = append(out, client)
	}
	return out
}

// broadcastMessage queues a status message for every connected client.
func (s *TwinServer) broadcastMessage(msg interface{}) {
	req := &broadcastRequest{reqType: reqMessage, msg: msg}
	select {
	case s.broadcastReq <- req:
	case <-s.ctx.Done():
	default:
		s.logger.Warnw("Broadcast request queue full, dropping message")
	}
}

// broadcastTaskDone announces a finished tracker task to the UI.
func (s *TwinServer) broadcastTaskDone(res tracker.Result) {
	msg := TaskDoneMessage{
		Type:      "task_done",
		Handle:    string(res.Handle),
		Name:      res.Name,
		Duration:  res.Duration.String(),
		Timestamp: time.Now().Unix(),
	}
	if res.Err != nil {
		msg.Error = res.Err.Error()
	}
	s.broadcastMessage(msg)
}

// broadcastCatalogUpdate pushes the current catalog counts.
func (s *TwinServer) broadcastCatalogUpdate() {
	counts := make(map[string]int)
	for kind, n := range s.session.Catalog.Counts() {
		counts[string(kind)] = n
	}
	s.broadcastMessage(CatalogUpdateMessage{
		Type:      "catalog_update",
		Counts:    counts,
		Timestamp: time.Now().Unix(),
	})
}
