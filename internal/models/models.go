package models

import (
	"sort"
	"strings"
	"time"
)

// Event represents one gathering with an associated photo set.
type Event struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Date       string    `json:"date"`
	CoverImage *string   `json:"coverImage"`
	Archived   bool      `json:"archived"`
	Hidden     bool      `json:"hidden"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Image represents one stored object belonging to an event. Images have no
// persisted record of their own; everything here is derived from the object
// store.
type Image struct {
	ID       string    `json:"id"`
	Key      string    `json:"key"`
	URL      string    `json:"url"`
	Uploaded time.Time `json:"uploaded"`
}

// Catalog is the single persisted document holding all event metadata.
type Catalog struct {
	Events []Event `json:"events"`
}

// FindEvent returns a pointer to the event with the given ID, or nil if the
// catalog has no such event. The pointer aliases the catalog's slice, so
// mutations through it are visible when the catalog is saved.
func (c *Catalog) FindEvent(id string) *Event {
	for i := range c.Events {
		if c.Events[i].ID == id {
			return &c.Events[i]
		}
	}
	return nil
}

// SortByDateDesc orders events by date, newest first. Dates are ISO calendar
// strings, so plain string comparison gives chronological order.
func (c *Catalog) SortByDateDesc() {
	sort.SliceStable(c.Events, func(i, j int) bool {
		return c.Events[i].Date > c.Events[j].Date
	})
}

// ImageIDFromKey derives an image's ID from its storage key: the segment
// after the last path separator with the extension stripped. Two keys that
// differ only in extension map to the same ID.
func ImageIDFromKey(key string) string {
	name := key
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
