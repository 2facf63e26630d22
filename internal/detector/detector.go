// Package detector turns food photos into ingredient labels by calling an
// object-detection inference server.
package detector

import (
	"context"
	"errors"

	"github.com/pageza/pantrychef/backend/internal/matcher"
)

// ErrDetectorUnavailable is returned when the inference server cannot be
// reached or the circuit breaker is open.
var ErrDetectorUnavailable = errors.New("ingredient detector unavailable")

// Detection is one labelled bounding box
type Detection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

// Detector is safe for concurrent use. Implementations are built once at
// startup and shared by every request.
type Detector interface {
	Detect(ctx context.Context, image []byte, filename string) ([]Detection, error)
}

// normalize rounds confidence to 3 decimals and box coordinates to 2,
// dropping detections below minConfidence or without a label.
func normalize(raw []Detection, minConfidence float64) []Detection {
	out := make([]Detection, 0, len(raw))
	for _, d := range raw {
		if d.Label == "" || d.Confidence < minConfidence {
			continue
		}
		box := make([]float64, len(d.Box))
		for i, v := range d.Box {
			box[i] = matcher.Round(v, 2)
		}
		out = append(out, Detection{
			Label:      d.Label,
			Confidence: matcher.Round(d.Confidence, 3),
			Box:        box,
		})
	}
	return out
}
