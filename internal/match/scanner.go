package match

import (
	"context"
	"fmt"
	"sort"

	"github.com/kozaktomas/face-finder/internal/extract"
)

// Corpus supplies the items of one scan: stable identifiers plus byte
// content on demand. Implementations report a missing or unreadable
// location as an error from Items.
type Corpus interface {
	Items() ([]string, error)
	Bytes(id string) ([]byte, error)
}

// Scanner drives one corpus scan against a loaded reference.
//
// The scan is sequential and events are emitted in strict lexicographic
// item order; extraction runs against a remote service, so the network
// round-trip dominates and a worker pool would only complicate the
// ordering contract.
type Scanner struct {
	Extractor     extract.Extractor
	Tolerance     float64
	MinConfidence float64
}

// Scan starts the scan and returns the ordered event channel. The channel
// is closed when the scan finishes or the context is cancelled. A
// cancellation between items stops the scan without a Summary event;
// events already delivered stay valid.
func (s *Scanner) Scan(ctx context.Context, ref *Reference, corpus Corpus) <-chan Event {
	events := make(chan Event, EventChannelBuffer)
	go func() {
		defer close(events)
		s.run(ctx, ref, corpus, events)
	}()
	return events
}

// emit delivers an event unless the consumer is gone.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Scanner) run(ctx context.Context, ref *Reference, corpus Corpus, events chan<- Event) {
	// Setup failures are fatal: one Error event, nothing else.
	if ref == nil || len(ref.Embedding) == 0 {
		emit(ctx, events, Event{Kind: EventError, Message: "no reference face loaded"})
		return
	}

	items, err := corpus.Items()
	if err != nil {
		emit(ctx, events, Event{Kind: EventError, Message: fmt.Sprintf("listing corpus: %v", err)})
		return
	}
	if len(items) == 0 {
		emit(ctx, events, Event{Kind: EventError, Message: "no images found in corpus"})
		return
	}
	sort.Strings(items)

	if !emit(ctx, events, Event{
		Kind:    EventInfo,
		Message: fmt.Sprintf("Searching in %d images...", len(items)),
	}) {
		return
	}

	matches := 0
	for _, id := range items {
		// Cooperative yield between items: this is the only place the
		// scan observes cancellation.
		select {
		case <-ctx.Done():
			return
		default:
		}

		data, err := corpus.Bytes(id)
		if err != nil {
			if !emit(ctx, events, itemError(id, err)) {
				return
			}
			continue
		}

		faces, err := s.Extractor.Extract(ctx, data)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// Single-item failure never aborts the scan.
			if !emit(ctx, events, itemError(id, err)) {
				return
			}
			continue
		}

		for i, face := range faces {
			distance := extract.Distance(ref.Embedding, face.Embedding)
			confidence := Confidence(distance)
			if !IsMatch(distance, confidence, s.Tolerance, s.MinConfidence) {
				continue
			}
			matches++
			if !emit(ctx, events, Event{
				Kind:       EventMatch,
				Message:    fmt.Sprintf("MATCH %d: %s | Confidence: %.1f%%", matches, id, confidence),
				Item:       id,
				FaceIndex:  i + 1,
				Distance:   distance,
				Confidence: confidence,
				BBox:       face.BBox,
			}) {
				return
			}
		}
	}

	emit(ctx, events, Event{
		Kind:    EventSummary,
		Message: fmt.Sprintf("Search complete. Total matches: %d in %d images", matches, len(items)),
		Matches: matches,
		Items:   len(items),
	})
}

func itemError(id string, err error) Event {
	return Event{
		Kind:    EventError,
		Message: fmt.Sprintf("Error processing %s: %v", id, err),
		Item:    id,
	}
}
