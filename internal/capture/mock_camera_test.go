package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func closeAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

func TestMockCamera_Playback(t *testing.T) {
	frames := BlankFrames(2)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Fatalf("ReadFrame() before Open error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Rows() != DefaultHeight || f.Cols() != DefaultWidth {
			t.Errorf("frame %d is %dx%d", i, f.Cols(), f.Rows())
		}
		f.Close()
	}

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Errorf("third read error = %v, want ErrEndOfStream", err)
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d, want 2", cam.Reads())
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frames := BlankFrames(1)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	defer cam.Close()

	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_NoFrames(t *testing.T) {
	cam := NewMockCamera(nil, true)
	cam.Open()

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("ReadFrame() error = %v, want ErrEmptyFrame", err)
	}

	frames := BlankFrames(1)
	defer closeAll(frames)
	cam.SetFrames(frames)
	f, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() after SetFrames error = %v", err)
	}
	f.Close()
}

func TestMockCamera_FPS(t *testing.T) {
	cam := NewMockCamera(nil, false)
	if cam.FPS() != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), DefaultFPS)
	}
	cam.SetFPS(25)
	cam.SetFPS(0)
	if cam.FPS() != 25 {
		t.Errorf("FPS() = %d, want 25", cam.FPS())
	}
}
