package landmark

// fingerX is the horizontal offset of each non-thumb finger, in hand units.
var fingerX = [NumDigits]float64{0, 0.30, 0.05, -0.20, -0.45}

// SyntheticHand builds a right hand in pixel space (y grows downward) with
// the wrist at the given point and a hand unit of size pixels. Extended
// fingers point straight up; curled fingers fold back below their PIP joint.
func SyntheticHand(extended [NumDigits]bool, wrist Point3D, size float64) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	at := func(dx, dy float64) Point3D {
		return Point3D{X: wrist.X + dx*size, Y: wrist.Y - dy*size, Z: wrist.Z}
	}

	h.Points[Wrist] = wrist

	h.Points[ThumbCMC] = at(-0.30, 0.20)
	h.Points[ThumbMCP] = at(-0.60, 0.50)
	if extended[DigitThumb] {
		h.Points[ThumbIP] = at(-0.80, 0.80)
		h.Points[ThumbTip] = at(-0.90, 1.10)
	} else {
		h.Points[ThumbIP] = at(-0.50, 0.70)
		h.Points[ThumbTip] = at(-0.20, 0.60)
	}

	bases := [NumDigits]int{0, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	for d := DigitIndex; d < NumDigits; d++ {
		x := fingerX[d]
		mcp := bases[d]
		h.Points[mcp] = at(x, 0.90)
		if extended[d] {
			h.Points[mcp+1] = at(x, 1.30)
			h.Points[mcp+2] = at(x, 1.60)
			h.Points[mcp+3] = at(x, 1.90)
		} else {
			h.Points[mcp+1] = at(x, 1.20)
			h.Points[mcp+2] = at(x, 1.00)
			h.Points[mcp+3] = at(x, 0.80)
		}
	}

	return h
}

// HandWithExtended builds a synthetic hand with the first n digits extended,
// thumb first. The resulting extended-finger count is n.
func HandWithExtended(n int, wrist Point3D, size float64) HandLandmarks {
	var ext [NumDigits]bool
	for i := 0; i < n && i < NumDigits; i++ {
		ext[i] = true
	}
	return SyntheticHand(ext, wrist, size)
}

// FistLandmarks returns a closed fist (no finger extended) at the given wrist.
func FistLandmarks(wrist Point3D) HandLandmarks {
	return SyntheticHand([NumDigits]bool{}, wrist, 40)
}

// OpenPalmLandmarks returns an open palm (all fingers extended) at the given wrist.
func OpenPalmLandmarks(wrist Point3D) HandLandmarks {
	return SyntheticHand([NumDigits]bool{true, true, true, true, true}, wrist, 40)
}

// PlaceAtHeight shifts the hand vertically so that the average of the wrist
// and middle fingertip y-coordinates equals y.
func PlaceAtHeight(h HandLandmarks, y float64) HandLandmarks {
	current := (h.Points[Wrist].Y + h.Points[MiddleTip].Y) / 2
	return *h.Translate(0, y-current)
}
