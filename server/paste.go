package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/plantworks/leantwin/errors"
)

// Paste session states.
const (
	pasteIdle  = "idle"
	pasteArmed = "armed"
)

const (
	// pastePollRate bounds the live-value refresh while armed.
	pastePollRate = rate.Limit(10)

	// pasteExpiry ends an armed session nobody drops.
	pasteExpiry = 2 * time.Minute
)

// pasteSession is the redesigned paste mode: arming it starts one
// bounded-rate poller refreshing the property value; dropping writes
// the latest value into a datasheet cell. At most one session is
// armed at a time.
type pasteSession struct {
	server *TwinServer

	mu       sync.Mutex
	gen      uint64 // bumped on every Arm; stale pollers self-discard
	state    string
	node     string
	property string
	value    string
	unit     string
	cancel   context.CancelFunc
}

func newPasteSession(s *TwinServer) *pasteSession {
	return &pasteSession{server: s, state: pasteIdle}
}

// State returns the current session state.
func (p *pasteSession) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Arm starts a paste session for a property of the active node. Any
// previous session is canceled first.
func (p *pasteSession) Arm(property string) error {
	node := p.server.session.ActiveNode()
	if node == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrNoActiveNode, "cannot arm paste"),
			"select a tag with exactly one node first")
	}
	if property == "" {
		return errors.NewInvalidRequestError("property must not be empty")
	}
	if _, err := p.server.session.Client(); err != nil {
		return err
	}

	p.Cancel()

	ctx, cancel := context.WithTimeout(p.server.ctx, pasteExpiry)

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.state = pasteArmed
	p.node = node
	p.property = property
	p.value = ""
	p.unit = ""
	p.cancel = cancel
	p.mu.Unlock()

	p.server.wg.Add(1)
	go func() {
		defer p.server.wg.Done()
		p.poll(ctx, gen, node, property)
	}()

	p.server.logger.Infow("Paste session armed", "node", node, "property", property)
	p.broadcastStatus()
	return nil
}

// poll refreshes the armed value until the session ends. The limiter
// keeps the repository load bounded no matter how fast queries return.
func (p *pasteSession) poll(ctx context.Context, gen uint64, node, property string) {
	limiter := rate.NewLimiter(pastePollRate, 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			p.expire(gen, node, property)
			return
		}

		client, err := p.server.session.Client()
		if err != nil {
			p.expire(gen, node, property)
			return
		}

		value, unit, found, err := client.PropertyValue(ctx, node, property)
		if err != nil {
			if ctx.Err() != nil {
				p.expire(gen, node, property)
				return
			}
			p.server.logger.Debugw("Paste poll failed", "error", err)
			continue
		}
		if !found {
			continue
		}

		p.mu.Lock()
		changed := p.gen == gen && p.state == pasteArmed &&
			(p.value != value || p.unit != unit)
		if changed {
			p.value = value
			p.unit = unit
		}
		p.mu.Unlock()

		if changed {
			p.broadcastStatus()
		}
	}
}

// expire resets the session when its poller stops, unless a newer
// session replaced it already.
func (p *pasteSession) expire(gen uint64, node, property string) {
	p.mu.Lock()
	stale := p.gen != gen || p.state != pasteArmed
	if !stale {
		p.state = pasteIdle
		p.node = ""
		p.property = ""
		p.value = ""
		p.unit = ""
		p.cancel = nil
	}
	p.mu.Unlock()

	if !stale {
		p.server.logger.Infow("Paste session ended", "node", node, "property", property)
		p.broadcastStatus()
	}
}

// Cancel ends the armed session, if any.
func (p *pasteSession) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Drop writes the armed value into a datasheet cell and ends the
// session. Returns the written value and unit.
func (p *pasteSession) Drop(datasheet, sheet, cell string) (value, unit string, err error) {
	p.mu.Lock()
	if p.state != pasteArmed {
		p.mu.Unlock()
		return "", "", errors.NewInvalidRequestError("no paste session armed")
	}
	if p.value == "" {
		p.mu.Unlock()
		return "", "", errors.WithHint(
			errors.NewInvalidRequestError("no value received yet"),
			"wait for the live value to appear before dropping")
	}
	value, unit = p.value, p.unit
	node, property := p.node, p.property
	p.mu.Unlock()

	if err := p.server.session.Library.WriteCell(datasheet, sheet, cell, value, unit); err != nil {
		return "", "", err
	}

	p.server.logger.Infow("Paste dropped",
		"node", node,
		"property", property,
		"datasheet", datasheet,
		"sheet", sheet,
		"cell", cell,
	)
	p.Cancel()
	return value, unit, nil
}

// snapshot returns the session fields for status reporting.
func (p *pasteSession) snapshot() PasteStatusMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PasteStatusMessage{
		Type:      "paste_status",
		State:     p.state,
		Node:      p.node,
		Property:  p.property,
		Value:     p.value,
		Unit:      p.unit,
		Timestamp: time.Now().Unix(),
	}
}

func (p *pasteSession) broadcastStatus() {
	p.server.broadcastMessage(p.snapshot())
}

// HandlePasteArm arms a paste session: POST /api/paste/arm.
func (s *TwinServer) HandlePasteArm(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Property string `json:"property"`
	}
	if readJSON(w, r, &req) != nil {
		return
	}
	if err := s.paste.Arm(req.Property); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.paste.snapshot())
}

// HandlePasteDrop writes the armed value into a cell: POST
// /api/paste/drop.
func (s *TwinServer) HandlePasteDrop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Datasheet string `json:"datasheet"`
		Sheet     string `json:"sheet"`
		Cell      string `json:"cell"`
	}
	if readJSON(w, r, &req) != nil {
		return
	}
	value, unit, err := s.paste.Drop(req.Datasheet, req.Sheet, req.Cell)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"datasheet": req.Datasheet,
		"sheet":     req.Sheet,
		"cell":      req.Cell,
		"value":     value,
		"unit":      unit,
	})
}

// HandlePasteCancel ends the armed session: POST /api/paste/cancel.
func (s *TwinServer) HandlePasteCancel(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	s.paste.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"state": s.paste.State()})
}

// HandlePasteStatus reports the session: GET /api/paste.
func (s *TwinServer) HandlePasteStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.paste.snapshot())
}
