package server

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/gesture"
	"github.com/ayusman/cuedspeech/internal/hook"
	"github.com/ayusman/cuedspeech/internal/landmark"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Practice message types.
const (
	MsgTarget    = "target"
	MsgFrame     = "frame"
	MsgSkip      = "skip"
	MsgReset     = "reset"
	MsgResult    = "result"
	MsgValidated = "validated"
	MsgError     = "error"
)

// ClientMessage is sent by the browser. A target message carries either a
// stored syllable ID or an inline target; a frame message carries one
// landmark frame, null when no hand is visible.
type ClientMessage struct {
	Type       string               `json:"type"`
	SyllableID string               `json:"syllable_id,omitempty"`
	Target     *lfpc.TargetSyllable `json:"target,omitempty"`
	Profile    string               `json:"profile,omitempty"`
	Landmarks  stdjson.RawMessage   `json:"landmarks,omitempty"`
}

// ServerMessage is sent back for every processed client message.
type ServerMessage struct {
	Type       string               `json:"type"`
	Target     *lfpc.TargetSyllable `json:"target,omitempty"`
	Result     *lfpc.MatchResult    `json:"result,omitempty"`
	State      string               `json:"state,omitempty"`
	Progress   int                  `json:"progress"`
	Window     int                  `json:"window,omitempty"`
	Hint       *gesture.Match       `json:"hint,omitempty"`
	Validation *store.Validation    `json:"validation,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// PracticeConfig wires a PracticeHandler. Store and Dispatcher are optional.
type PracticeConfig struct {
	Store      *store.Store
	Engine     *config.Engine
	Profile    string
	References *gesture.ReferenceMatcher
	Dispatcher *hook.Dispatcher
	// FrameRate caps processed frames per second. Zero uses the profile's
	// sample rate.
	FrameRate float64
}

// PracticeHandler runs one practice session per websocket connection. The
// client streams landmark frames; each frame is matched against the current
// target and fed to the stability gate.
type PracticeHandler struct {
	config  PracticeConfig
	matcher *lfpc.Matcher
}

// NewPracticeHandler creates a PracticeHandler.
func NewPracticeHandler(cfg PracticeConfig) *PracticeHandler {
	if cfg.Engine == nil {
		cfg.Engine = config.DefaultEngine()
	}
	return &PracticeHandler{config: cfg, matcher: cfg.Engine.Matcher()}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PracticeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	profileName := r.URL.Query().Get("profile")
	if profileName == "" {
		profileName = h.config.Profile
	}
	profile, err := h.config.Engine.Profile(profileName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(logging.Fields{"error": err.Error()}, "websocket upgrade failed")
		return
	}
	defer conn.Close()

	p := h.newPractice(profile)
	logging.Info(logging.Fields{"profile": profile.Name, "remote": r.RemoteAddr}, "practice session started")

	for {
		var msg ClientMessage
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			conn.WriteJSON(ServerMessage{Type: MsgError, Error: "Invalid JSON"})
			continue
		}

		reply, ok := p.handle(&msg)
		if !ok {
			continue
		}
		if err := conn.WriteJSON(reply); err != nil {
			break
		}
	}

	logging.Info(logging.Fields{"profile": profile.Name, "dropped_frames": p.dropped}, "practice session ended")
}

// practice is the per-connection state. It is only touched by the
// connection's read loop.
type practice struct {
	h          *PracticeHandler
	session    *lfpc.Session
	limiter    *rate.Limiter
	syllableID string
	dropped    int
	// warned is set once an unscorable target has been logged.
	warned bool
}

func (h *PracticeHandler) newPractice(profile lfpc.StabilityProfile) *practice {
	return &practice{
		h:       h,
		session: lfpc.NewSession(profile),
		limiter: rate.NewLimiter(h.frameLimit(profile), 1),
	}
}

func (h *PracticeHandler) frameLimit(profile lfpc.StabilityProfile) rate.Limit {
	fps := h.config.FrameRate
	if fps <= 0 {
		fps = profile.SampleRate
	}
	if fps <= 0 {
		return rate.Inf
	}
	return rate.Limit(fps)
}

// handle processes one client message. ok is false when nothing should be
// sent back, which is the case for throttled frames.
func (p *practice) handle(msg *ClientMessage) (reply ServerMessage, ok bool) {
	switch msg.Type {
	case MsgTarget:
		if err := p.setTarget(msg); err != nil {
			return ServerMessage{Type: MsgError, Error: err.Error()}, true
		}
		return p.status(MsgTarget), true

	case MsgFrame:
		if !p.limiter.Allow() {
			p.dropped++
			return ServerMessage{}, false
		}
		return p.frame(msg.Landmarks), true

	case MsgSkip:
		if t := p.session.Target(); t != nil {
			p.fire(hook.EventSkipped, t, 0)
		}
		p.session.SetTarget(nil)
		p.syllableID = ""
		p.warned = false
		return p.status(MsgSkip), true

	case MsgReset:
		p.session.Reset()
		return p.status(MsgReset), true

	default:
		return ServerMessage{Type: MsgError, Error: "unknown message type " + msg.Type}, true
	}
}

func (p *practice) setTarget(msg *ClientMessage) error {
	var (
		target     *lfpc.TargetSyllable
		syllableID string
	)
	switch {
	case msg.Target != nil:
		target = msg.Target
	case msg.SyllableID != "":
		if p.h.config.Store == nil {
			return errors.New("no syllable store configured")
		}
		s, err := p.h.config.Store.Syllables().GetByID(msg.SyllableID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return errors.New("syllable not found")
			}
			return err
		}
		target, syllableID = s.Target(), s.ID
	default:
		return errors.New("target message needs a target or a syllable_id")
	}

	// The current attempt survives a rejected message.
	if msg.Profile != "" {
		profile, err := p.h.config.Engine.Profile(msg.Profile)
		if err != nil {
			return err
		}
		p.session = lfpc.NewSession(profile)
		p.limiter.SetLimit(p.h.frameLimit(profile))
	}

	p.session.SetTarget(target)
	p.syllableID = syllableID
	p.warned = false
	return nil
}

func (p *practice) status(typ string) ServerMessage {
	profile := p.session.Profile()
	return ServerMessage{
		Type:     typ,
		Target:   p.session.Target(),
		State:    p.session.State().String(),
		Progress: p.session.Progress(),
		Window:   profile.Window,
	}
}

func (p *practice) frame(raw []byte) ServerMessage {
	hand, err := landmark.ParseFrame(raw)
	if err != nil {
		hand = nil
	}

	target := p.session.Target()
	result := p.h.matcher.Match(hand, target)
	if !p.warned && (result.Outcome == lfpc.OutcomeNoTarget || result.Outcome == lfpc.OutcomePartialSpec) {
		logging.Warn(logging.Fields{"outcome": string(result.Outcome)}, "frames cannot be validated for this target")
		p.warned = true
	}

	validated := p.session.Observe(result)

	msg := p.status(MsgResult)
	msg.Result = &result
	if hand != nil && p.h.config.References != nil {
		if m, ok := p.h.config.References.Closest(hand); ok {
			msg.Hint = &m
		}
	}

	if validated {
		msg.Type = MsgValidated
		msg.Validation = p.record(target, result.Confidence)
		p.fire(hook.EventValidated, target, result.Confidence)
	}
	return msg
}

func (p *practice) record(target *lfpc.TargetSyllable, confidence int) *store.Validation {
	v := &store.Validation{
		SyllableText: target.Text,
		Confidence:   confidence,
		Profile:      p.session.Profile().Name,
		Frames:       p.session.Profile().Window,
		Source:       "ws",
	}
	if p.syllableID != "" {
		id := p.syllableID
		v.SyllableID = &id
	}

	logging.Info(logging.Fields{
		"syllable":   target.Text,
		"confidence": confidence,
		"profile":    v.Profile,
	}, "syllable validated")

	if p.h.config.Store == nil {
		return v
	}
	if err := p.h.config.Store.Validations().Record(v); err != nil {
		logging.Error(logging.Fields{"error": err.Error(), "syllable": target.Text}, "failed to record validation")
	}
	return v
}

// fire runs the hooks for an event in the background; a slow hook never
// stalls the frame loop.
func (p *practice) fire(event string, target *lfpc.TargetSyllable, confidence int) {
	d := p.h.config.Dispatcher
	if d == nil || target == nil {
		return
	}
	req := hook.Request{
		Event:      event,
		Syllable:   target.Text,
		SyllableID: p.syllableID,
		Confidence: confidence,
		Profile:    p.session.Profile().Name,
		Frames:     p.session.Profile().Window,
		Timestamp:  time.Now(),
	}
	go d.Fire(context.Background(), req)
}
