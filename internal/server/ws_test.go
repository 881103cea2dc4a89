package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/cuedspeech/internal/landmark"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/store"
)

func dialPractice(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/practice" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg ClientMessage) ServerMessage {
	t.Helper()
	send(t, conn, msg)
	return receive(t, conn)
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var reply ServerMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read: %v", err)
	}
	return reply
}

// frame encodes a hand with n extended digits at the given vertical ratio.
func frame(t *testing.T, n int, ratio float64) ClientMessage {
	t.Helper()
	h := landmark.HandWithExtended(n, landmark.Point3D{X: 320, Y: 300}, 40)
	h = landmark.PlaceAtHeight(h, ratio*lfpc.DefaultTuning().ReferenceHeight)
	data, err := json.Marshal(h.Points)
	if err != nil {
		t.Fatalf("failed to encode frame: %v", err)
	}
	return ClientMessage{Type: MsgFrame, Landmarks: data}
}

func TestPractice_ValidatesAfterStableWindow(t *testing.T) {
	st := newTestStore(t)
	key, zone := "J", 3
	syl := &store.Syllable{Text: "pa", HandSignKey: &key, HandPositionConfig: &zone}
	if err := st.Syllables().Create(syl); err != nil {
		t.Fatalf("failed to create syllable: %v", err)
	}

	srv := httptest.NewServer(New(Config{Store: st, Profile: "lenient", FrameRate: 1e6}))
	defer srv.Close()
	conn := dialPractice(t, srv, "")

	reply := roundTrip(t, conn, ClientMessage{Type: MsgTarget, SyllableID: syl.ID})
	if reply.Type != MsgTarget || reply.Target == nil || reply.Target.Text != "pa" {
		t.Fatalf("unexpected target reply %+v", reply)
	}
	if reply.State != "idle" || reply.Window != 5 {
		t.Errorf("expected idle with window 5, got %+v", reply)
	}

	good := frame(t, 1, 0.42)
	for i := 1; i < 5; i++ {
		reply = roundTrip(t, conn, good)
		if reply.Type != MsgResult {
			t.Fatalf("frame %d: expected result, got %q", i, reply.Type)
		}
		if reply.Progress != i || reply.State != "accumulating" {
			t.Errorf("frame %d: expected progress %d accumulating, got %d %s", i, i, reply.Progress, reply.State)
		}
		if reply.Result == nil || !reply.Result.IsValid {
			t.Errorf("frame %d: expected a valid match, got %+v", i, reply.Result)
		}
	}

	reply = roundTrip(t, conn, good)
	if reply.Type != MsgValidated {
		t.Fatalf("expected validation on frame 5, got %q", reply.Type)
	}
	if reply.Validation == nil || reply.Validation.Confidence != 100 || reply.Validation.Source != "ws" {
		t.Errorf("unexpected validation %+v", reply.Validation)
	}

	// Observations are ignored until the attempt is reset.
	reply = roundTrip(t, conn, good)
	if reply.Type != MsgResult || reply.State != "validated" {
		t.Errorf("expected validated state to hold, got %s %s", reply.Type, reply.State)
	}

	validations, err := st.Validations().List(syl.ID, 0)
	if err != nil {
		t.Fatalf("failed to list validations: %v", err)
	}
	if len(validations) != 1 || validations[0].Profile != "lenient" || validations[0].Frames != 5 {
		t.Errorf("expected one lenient validation, got %+v", validations)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgReset})
	if reply.State != "idle" || reply.Progress != 0 || reply.Target == nil {
		t.Errorf("reset should keep the target and clear progress, got %+v", reply)
	}
}

func TestPractice_ABadFrameBreaksTheRun(t *testing.T) {
	srv := httptest.NewServer(New(Config{Profile: "lenient", FrameRate: 1e6}))
	defer srv.Close()
	conn := dialPractice(t, srv, "")

	roundTrip(t, conn, ClientMessage{Type: MsgTarget, Target: lfpc.NewTarget("pa", "J", lfpc.ZoneMouth)})

	good := frame(t, 1, 0.42)
	for i := 0; i < 4; i++ {
		roundTrip(t, conn, good)
	}

	reply := roundTrip(t, conn, ClientMessage{Type: MsgFrame, Landmarks: []byte("null")})
	if reply.Result == nil || reply.Result.Outcome != lfpc.OutcomeNoHand {
		t.Fatalf("expected no hand, got %+v", reply.Result)
	}
	if reply.Progress != 0 {
		t.Errorf("expected the run to restart, got progress %d", reply.Progress)
	}

	for i := 0; i < 4; i++ {
		if reply = roundTrip(t, conn, good); reply.Type != MsgResult {
			t.Fatalf("frame %d: validated too early", i)
		}
	}
	if reply = roundTrip(t, conn, good); reply.Type != MsgValidated {
		t.Errorf("expected validation after five fresh frames, got %q", reply.Type)
	}
}

func TestPractice_Messages(t *testing.T) {
	srv := httptest.NewServer(New(Config{FrameRate: 1e6}))
	defer srv.Close()
	conn := dialPractice(t, srv, "?profile=strict")

	reply := roundTrip(t, conn, frame(t, 1, 0.42))
	if reply.Result == nil || reply.Result.Outcome != lfpc.OutcomeNoTarget {
		t.Errorf("expected no target outcome, got %+v", reply.Result)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgTarget})
	if reply.Type != MsgError {
		t.Errorf("expected error for an empty target, got %q", reply.Type)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgTarget, SyllableID: "abc"})
	if reply.Type != MsgError {
		t.Errorf("expected error without a store, got %q", reply.Type)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgTarget, Target: lfpc.NewTarget("ma", "M", 0), Profile: "lenient"})
	if reply.Window != 5 {
		t.Errorf("expected the lenient window after switching profile, got %d", reply.Window)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: MsgSkip})
	if reply.Type != MsgSkip || reply.Target != nil || reply.State != "idle" {
		t.Errorf("unexpected skip reply %+v", reply)
	}

	reply = roundTrip(t, conn, ClientMessage{Type: "dance"})
	if reply.Type != MsgError {
		t.Errorf("expected error for unknown type, got %q", reply.Type)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{oops")); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	if reply = receive(t, conn); reply.Error != "Invalid JSON" {
		t.Errorf("expected invalid JSON error, got %+v", reply)
	}
}

func TestPractice_RejectedTargetKeepsAttempt(t *testing.T) {
	srv := httptest.NewServer(New(Config{Store: newTestStore(t), Profile: "lenient", FrameRate: 1e6}))
	defer srv.Close()
	conn := dialPractice(t, srv, "")

	target := lfpc.NewTarget("pa", "J", lfpc.ZoneMouth)
	roundTrip(t, conn, ClientMessage{Type: MsgTarget, Target: target})
	good := frame(t, 1, 0.42)
	for i := 0; i < 3; i++ {
		roundTrip(t, conn, good)
	}

	reply := roundTrip(t, conn, ClientMessage{Type: MsgTarget, SyllableID: "missing", Profile: "strict"})
	if reply.Type != MsgError || reply.Error != "syllable not found" {
		t.Fatalf("expected syllable not found, got %+v", reply)
	}

	reply = roundTrip(t, conn, good)
	if reply.Target == nil || reply.Target.Text != "pa" {
		t.Errorf("expected the previous target to survive, got %+v", reply.Target)
	}
	if reply.Progress != 4 || reply.Window != 5 {
		t.Errorf("expected lenient progress 4/5, got %d/%d", reply.Progress, reply.Window)
	}
}

func TestPractice_DropsFramesAboveSampleRate(t *testing.T) {
	// The strict profile samples at 10 Hz.
	srv := httptest.NewServer(New(Config{}))
	defer srv.Close()
	conn := dialPractice(t, srv, "")

	roundTrip(t, conn, ClientMessage{Type: MsgTarget, Target: lfpc.NewTarget("pa", "J", lfpc.ZoneMouth)})

	good := frame(t, 1, 0.42)
	if reply := roundTrip(t, conn, good); reply.Type != MsgResult {
		t.Fatalf("expected the first frame to be processed, got %q", reply.Type)
	}
	send(t, conn, good)
	send(t, conn, good)

	reply := roundTrip(t, conn, ClientMessage{Type: MsgReset})
	if reply.Type != MsgReset {
		t.Errorf("expected throttled frames to get no reply, got %q", reply.Type)
	}
}

func TestPractice_UnknownProfile(t *testing.T) {
	srv := httptest.NewServer(New(Config{}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/practice?profile=expert"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Errorf("expected a 400 response, got %v", resp)
	}
}
