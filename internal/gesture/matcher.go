// Package gesture compares hands against recorded reference shapes, one per
// configuration key.
package gesture

import (
	"math"
	"sort"
	"sync"

	"github.com/ayusman/cuedspeech/internal/landmark"
)

// DefaultTolerance is the largest summed landmark distance, in normalized
// hand units, that still counts as a match.
const DefaultTolerance = 4.0

// Reference is an averaged, normalized hand shape for one configuration key.
type Reference struct {
	Key       string             `json:"key"`
	Landmarks []landmark.Point3D `json:"landmarks"`
	Tolerance float64            `json:"tolerance"`
	Samples   int                `json:"samples"`
}

// Match is one ranked comparison result.
type Match struct {
	Key      string  `json:"key"`
	Score    float64 `json:"score"`    // 1/(1+distance), higher is better
	Distance float64 `json:"distance"` // summed Euclidean distance
}

// ReferenceMatcher ranks reference shapes by distance to an input hand.
// It is safe for concurrent use.
type ReferenceMatcher struct {
	mu         sync.RWMutex
	references map[string]*Reference
}

// NewReferenceMatcher creates an empty matcher.
func NewReferenceMatcher() *ReferenceMatcher {
	return &ReferenceMatcher{
		references: make(map[string]*Reference),
	}
}

// SetReference adds or replaces the reference for its key.
func (m *ReferenceMatcher) SetReference(r *Reference) {
	if r == nil || r.Key == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.references[r.Key] = r
}

// RemoveReference drops the reference for key.
func (m *ReferenceMatcher) RemoveReference(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.references, key)
}

// Keys returns the keys with a reference, sorted.
func (m *ReferenceMatcher) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.references))
	for k := range m.references {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Match normalizes the hand and returns every reference within tolerance,
// best first.
func (m *ReferenceMatcher) Match(hand *landmark.HandLandmarks) []Match {
	if hand == nil {
		return nil
	}

	normalized := hand.Normalize()
	input := normalized.Points[:]

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, ref := range m.references {
		if len(ref.Landmarks) != landmark.NumLandmarks {
			continue
		}

		distance := euclideanDistance(input, ref.Landmarks)

		tolerance := ref.Tolerance
		if tolerance <= 0 {
			tolerance = DefaultTolerance
		}
		if distance > tolerance {
			continue
		}

		matches = append(matches, Match{
			Key:      ref.Key,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].Key < matches[j].Key
		}
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// Closest returns the best match, if any.
func (m *ReferenceMatcher) Closest(hand *landmark.HandLandmarks) (Match, bool) {
	matches := m.Match(hand)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// euclideanDistance sums the distances between corresponding points.
func euclideanDistance(a, b []landmark.Point3D) float64 {
	n := min(len(a), len(b))

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return total
}
