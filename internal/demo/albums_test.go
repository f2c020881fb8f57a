package demo

import (
	"context"
	"testing"
)

func TestCrate(t *testing.T) {
	c := NewCrate()
	ctx := context.Background()

	page, err := c.SavedAlbums(ctx, 0, 50)
	if err != nil {
		t.Fatalf("SavedAlbums() error = %v", err)
	}
	if len(page.Albums) != len(Albums) {
		t.Errorf("len(Albums) = %d, want %d", len(page.Albums), len(Albums))
	}
	if page.HasMore {
		t.Error("HasMore = true, want a single page")
	}

	next, err := c.SavedAlbums(ctx, len(Albums), 50)
	if err != nil {
		t.Fatalf("SavedAlbums() error = %v", err)
	}
	if len(next.Albums) != 0 {
		t.Errorf("second page has %d albums, want 0", len(next.Albums))
	}
}

func TestMockAlbumsArePlayable(t *testing.T) {
	seen := make(map[string]bool)
	for _, a := range Albums {
		if a.TotalTracks < 1 {
			t.Errorf("%s has no tracks", a.Name)
		}
		if a.URI == "" {
			t.Errorf("%s has no URI", a.Name)
		}
		if seen[a.ID] {
			t.Errorf("duplicate album ID %s", a.ID)
		}
		seen[a.ID] = true
	}
}
