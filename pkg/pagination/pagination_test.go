package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTrip(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	parsed, err := ParseCursor(EncodeCursor(c))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.CreatedAt.Equal(c.CreatedAt) || parsed.ID != c.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", parsed, c)
	}
	if got, err := ParseCursor(""); err != nil || got != nil {
		t.Fatalf("blank cursor should be nil, got %v %v", got, err)
	}
	if _, err := ParseCursor("not-base64!"); err == nil {
		t.Fatalf("expected error for garbage cursor")
	}
}

func TestPageTrimsBuffer(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Minute)}, {uuid.New(), now.Add(-2 * time.Minute)}}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page, next := Page(rows, 2, cursorOf)
	if len(page) != 2 || next == "" {
		t.Fatalf("expected 2 rows and a cursor, got %d %q", len(page), next)
	}
	decoded, err := ParseCursor(next)
	if err != nil || decoded.ID != rows[1].id {
		t.Fatalf("cursor should point at last returned row: %v %v", decoded, err)
	}

	page, next = Page(rows[:2], 2, cursorOf)
	if len(page) != 2 || next != "" {
		t.Fatalf("expected final page without cursor")
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit || NormalizeLimit(10) != 10 {
		t.Fatalf("unexpected normalize results")
	}
}
