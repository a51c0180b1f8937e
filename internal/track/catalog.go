package track

import (
	"context"
	"fmt"

	"backend-racehub/internal/shared"
)

// Catalog is the in-memory track set loaded once at startup. It is read-only
// after construction and safe for concurrent use.
type Catalog struct {
	order  []string
	tracks map[string]Track
}

func NewCatalog(tracks []Track) *Catalog {
	c := &Catalog{tracks: make(map[string]Track, len(tracks))}
	for _, t := range tracks {
		if _, ok := c.tracks[t.Name]; ok {
			continue
		}
		c.order = append(c.order, t.Name)
		c.tracks[t.Name] = t
	}
	return c
}

func (c *Catalog) Get(_ context.Context, name string) (Track, error) {
	t, ok := c.tracks[name]
	if !ok {
		return Track{}, fmt.Errorf("%q: %w", name, shared.ErrTrackNotFound)
	}
	return t, nil
}

func (c *Catalog) Names(_ context.Context) ([]string, error) {
	return append([]string(nil), c.order...), nil
}

// All returns the tracks in load order.
func (c *Catalog) All() []Track {
	out := make([]Track, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tracks[name])
	}
	return out
}

func (c *Catalog) Len() int { return len(c.order) }
