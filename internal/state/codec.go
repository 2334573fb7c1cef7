package state

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// Serialize encodes the store as {"<page>": [segment, ...]}. Map keys are
// emitted in sorted order, so equal stores encode to equal bytes.
func (ps *PathStore) Serialize() ([]byte, error) {
	snap := ps.Snapshot()
	out := make(map[string][]Segment, len(snap))
	for page, segs := range snap {
		out[strconv.Itoa(page)] = segs
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode path data: %w", err)
	}
	return data, nil
}

// HydrateReport lists what Hydrate loaded and what it skipped.
type HydrateReport struct {
	Pages    int      `json:"pages"`
	Segments int      `json:"segments"`
	Skipped  []string `json:"skipped,omitempty"`
}

// Hydrate replaces the whole store with serialized path data. Pages with
// a bad key, a page number beyond pageCount (when pageCount > 0), or an
// undecodable segment array are skipped; the rest is loaded. Only input
// that is not a JSON object at all is rejected, leaving the store as is.
func (ps *PathStore) Hydrate(data []byte, pageCount int) (HydrateReport, error) {
	var report HydrateReport
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return report, fmt.Errorf("decode path data: %w", err)
	}

	pages := make(map[int][]Segment, len(raw))
	maxOrder := int64(-1)
	for key, msg := range raw {
		page, err := strconv.Atoi(key)
		if err != nil || page < 1 || (pageCount > 0 && page > pageCount) {
			log.Printf("[STORE] Skipping page key %q: out of range", key)
			report.Skipped = append(report.Skipped, key)
			continue
		}
		var segs []Segment
		if err := json.Unmarshal(msg, &segs); err != nil {
			log.Printf("[STORE] Skipping page %d: %v", page, err)
			report.Skipped = append(report.Skipped, key)
			continue
		}
		if len(segs) == 0 {
			continue
		}
		for _, s := range segs {
			maxOrder = max(maxOrder, s.DrawOrder)
		}
		pages[page] = segs
		report.Pages++
		report.Segments += len(segs)
	}

	ps.mu.Lock()
	for page := range ps.pages {
		if _, ok := pages[page]; !ok {
			ps.install(page, nil, OpHydrate)
		}
	}
	for page, segs := range pages {
		ps.install(page, segs, OpHydrate)
	}
	if maxOrder >= 0 {
		ps.clock.Observe(maxOrder)
	}
	ps.mu.Unlock()

	log.Printf("[STORE] Hydrated %d segments on %d pages (%d skipped)", report.Segments, report.Pages, len(report.Skipped))
	ps.notify(Change{Type: OpHydrate})
	return report, nil
}
