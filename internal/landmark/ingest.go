package landmark

import (
	"bytes"
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidFrame is returned when a landmark frame does not have exactly
// NumLandmarks well-formed points. Callers treat it as "no hand detected".
var ErrInvalidFrame = errors.New("invalid landmark frame")

// wirePoint decodes either [x, y, z] / [x, y] or {"x":..,"y":..,"z":..}.
type wirePoint Point3D

func (p *wirePoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty point", ErrInvalidFrame)
	}

	switch data[0] {
	case '[':
		var coords []float64
		if err := json.Unmarshal(data, &coords); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		if len(coords) < 2 || len(coords) > 3 {
			return fmt.Errorf("%w: point has %d coordinates", ErrInvalidFrame, len(coords))
		}
		*p = wirePoint{X: coords[0], Y: coords[1]}
		if len(coords) == 3 {
			p.Z = coords[2]
		}
		return nil
	case '{':
		var pt Point3D
		if err := json.Unmarshal(data, &pt); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
		}
		*p = wirePoint(pt)
		return nil
	default:
		return fmt.Errorf("%w: unexpected point %s", ErrInvalidFrame, data)
	}
}

// wireHand is the object form of a frame, as emitted by the MediaPipe service.
type wireHand struct {
	Points     []wirePoint `json:"points"`
	Handedness string      `json:"handedness"`
	Score      float64     `json:"score"`
}

// ParseFrame converts a raw landmark frame into HandLandmarks.
//
// Accepted inputs are JSON null (no hand, returns nil and no error), an array
// of points, or an object with a "points" array. Each point may be a tuple or
// an object; a missing z is 0. Anything that is not exactly NumLandmarks points
// returns ErrInvalidFrame.
func ParseFrame(raw []byte) (*HandLandmarks, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var hand wireHand
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &hand.Points); err != nil {
			return nil, wrapFrameErr(err)
		}
	case '{':
		if err := json.Unmarshal(raw, &hand); err != nil {
			return nil, wrapFrameErr(err)
		}
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrInvalidFrame)
	}

	return hand.toHandLandmarks()
}

func (h wireHand) toHandLandmarks() (*HandLandmarks, error) {
	if len(h.Points) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d points, want %d", ErrInvalidFrame, len(h.Points), NumLandmarks)
	}

	lm := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		lm.Points[i] = Point3D(p)
	}
	return lm, nil
}

func wrapFrameErr(err error) error {
	if errors.Is(err, ErrInvalidFrame) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidFrame, err)
}
