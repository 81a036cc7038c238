package match

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/kozaktomas/face-finder/internal/extract"
)

// ErrNoFace is returned when the reference image contains no detectable face.
var ErrNoFace = errors.New("no face detected in reference image")

// Reference is the face a scan searches for. It is owned by exactly one
// search session and is immutable once loaded.
type Reference struct {
	Embedding []float32
	SourceID  string
}

// LoadReference extracts faces from the reference image and keeps the first
// one the extractor returns. Additional faces are dropped with only an
// informational log; callers that need stricter behavior must pre-crop.
func LoadReference(ctx context.Context, extractor extract.Extractor, imageData []byte, sourceID string) (*Reference, error) {
	faces, err := extractor.Extract(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("extracting faces from reference image: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoFace
	}
	if len(faces) > 1 {
		log.Printf("reference image %s contains %d faces, using the first one", sourceID, len(faces))
	}

	embedding := make([]float32, len(faces[0].Embedding))
	copy(embedding, faces[0].Embedding)

	return &Reference{
		Embedding: embedding,
		SourceID:  sourceID,
	}, nil
}
