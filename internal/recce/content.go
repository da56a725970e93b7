package recce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/danisampedro/locationapp/internal/itinerary"
)

// contentVersion is written into every stored body.
const contentVersion = 2

// Content is a decoded document body.
type Content struct {
	Items []Item

	// Legacy reports that the body was stored in the two-list layout.
	Legacy bool
}

type storedContent struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// legacyContent is the layout that kept legs and free entries in separate
// arrays sharing one order field.
type legacyContent struct {
	Legs        []itinerary.Leg `json:"legs"`
	FreeEntries []legacyEntry   `json:"freeEntries"`
}

type legacyEntry struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Text  string  `json:"text"`
	Order float64 `json:"order"`
}

// DecodeContent reads a stored document body. Legacy bodies are converted
// into a single item list; legs come before free entries of equal order.
func DecodeContent(raw []byte) (Content, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Content{}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Content{}, fmt.Errorf("decode recce content: %w", err)
	}

	if _, ok := probe["items"]; ok {
		var stored storedContent
		if err := json.Unmarshal(raw, &stored); err != nil {
			return Content{}, fmt.Errorf("decode recce items: %w", err)
		}
		return Content{Items: stored.Items}, nil
	}

	_, hasLegs := probe["legs"]
	_, hasFree := probe["freeEntries"]
	if !hasLegs && !hasFree {
		return Content{}, nil
	}

	var legacy legacyContent
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return Content{}, fmt.Errorf("decode legacy recce content: %w", err)
	}

	items := make([]Item, 0, len(legacy.Legs)+len(legacy.FreeEntries))
	for i, leg := range legacy.Legs {
		id := leg.ID
		if id == "" {
			id = fmt.Sprintf("leg_%d", i)
		}
		l := leg
		l.ID = id
		items = append(items, Item{ID: id, Kind: KindLeg, Order: leg.Order, Leg: &l})
	}
	for i, e := range legacy.FreeEntries {
		id := e.ID
		if id == "" {
			id = fmt.Sprintf("free_%d", i)
		}
		items = append(items, Item{
			ID:    id,
			Kind:  KindFree,
			Order: e.Order,
			Free:  &FreeEntry{Title: e.Title, Text: e.Text},
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})

	return Content{Items: items, Legacy: true}, nil
}

// EncodeContent writes items in the current stored layout.
func EncodeContent(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(storedContent{Version: contentVersion, Items: items})
}
