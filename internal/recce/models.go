// Package recce stores location-scouting trip documents and derives their
// itineraries.
//
// A document body is a single ordered list of items. Each item is either a
// travel leg or a free-text entry, and both kinds share one order space so
// notes can sit between legs.
package recce

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/danisampedro/locationapp/internal/itinerary"
)

// Repository and document errors.
var (
	ErrRecceNotFound = errors.New("recce not found")
	ErrItemNotFound  = errors.New("item not found")
	ErrInvalidItem   = errors.New("invalid item")
)

// ItemKind tags the payload of an Item.
type ItemKind string

const (
	KindLeg  ItemKind = "leg"
	KindFree ItemKind = "free"
)

// FreeEntry is a free-text block, such as parking notes or a contact list.
type FreeEntry struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// Item is one entry of a document. Exactly one of Leg and Free is set,
// matching Kind.
type Item struct {
	ID    string         `json:"id"`
	Kind  ItemKind       `json:"kind"`
	Order float64        `json:"order"`
	Leg   *itinerary.Leg `json:"leg,omitempty"`
	Free  *FreeEntry     `json:"free,omitempty"`
}

// Validate checks that the payload matches the kind.
func (it Item) Validate() error {
	switch it.Kind {
	case KindLeg:
		if it.Leg == nil || it.Free != nil {
			return fmt.Errorf("%w: leg item needs a leg payload only", ErrInvalidItem)
		}
	case KindFree:
		if it.Free == nil || it.Leg != nil {
			return fmt.Errorf("%w: free item needs a free payload only", ErrInvalidItem)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidItem, it.Kind)
	}
	return nil
}

// Document is a recce: a dated trip with its ordered items.
type Document struct {
	ID        string
	ProjectID string
	Title     string
	Date      string

	// MeetingPoint overrides the project's meeting point when set.
	MeetingPoint string

	Items []Item

	// Legacy is set at load when the stored body used the old two-list
	// layout and has not been rewritten yet.
	Legacy bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sorted returns the items ordered by Order. Ties keep their stored order.
func (d *Document) Sorted() []Item {
	items := append([]Item(nil), d.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Order < items[j].Order
	})
	return items
}

// Legs returns the document's legs in item order. Each leg carries its
// item's ID and order.
func (d *Document) Legs() []itinerary.Leg {
	var legs []itinerary.Leg
	for _, it := range d.Sorted() {
		if it.Kind != KindLeg || it.Leg == nil {
			continue
		}
		leg := *it.Leg
		leg.ID = it.ID
		leg.Order = it.Order
		legs = append(legs, leg)
	}
	return legs
}

// Reorder moves the item with itemID to position index of the sorted list
// and renumbers every item to its new position. Out of range indexes are
// clamped.
func (d *Document) Reorder(itemID string, index int) error {
	items := d.Sorted()

	from := -1
	for i, it := range items {
		if it.ID == itemID {
			from = i
			break
		}
	}
	if from < 0 {
		return ErrItemNotFound
	}

	moved := items[from]
	items = append(items[:from], items[from+1:]...)

	if index < 0 {
		index = 0
	}
	if index > len(items) {
		index = len(items)
	}
	items = append(items, Item{})
	copy(items[index+1:], items[index:])
	items[index] = moved

	renumber(items)
	d.Items = items
	return nil
}

// Normalize assigns IDs to items that lack one or share one, and syncs the
// order and ID carried inside leg payloads.
func (d *Document) Normalize() {
	seen := make(map[string]bool, len(d.Items))
	for i := range d.Items {
		it := &d.Items[i]
		if it.ID == "" || seen[it.ID] {
			it.ID = newItemID()
		}
		seen[it.ID] = true
		if it.Leg != nil {
			leg := *it.Leg
			leg.ID = it.ID
			leg.Order = it.Order
			it.Leg = &leg
		}
	}
}

func renumber(items []Item) {
	for i := range items {
		items[i].Order = float64(i)
		if items[i].Leg != nil {
			leg := *items[i].Leg
			leg.Order = float64(i)
			items[i].Leg = &leg
		}
	}
}

func newItemID() string {
	return "itm_" + uuid.New().String()[:22]
}
