package albums

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRepository_CreateListGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := NewRepository(WithClock(fixedClock(now)))
	Seed(repo)

	created, err := repo.Create(ctx, NewAlbum{Title: "Sarah's Graduation", PhotoCount: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusSubmitted {
		t.Fatalf("expected submitted status, got %q", created.Status)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var titles []string
	for _, album := range list {
		titles = append(titles, album.Title)
	}
	want := []string{"Sarah's Graduation", "Birthday Celebration", "Summer Memories"}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Fatalf("list order mismatch (-want +got):\n%s", diff)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(created, got); diff != "" {
		t.Fatalf("album mismatch (-want +got):\n%s", diff)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_SetStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	album, err := repo.Create(ctx, NewAlbum{Title: "Trip"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.SetStatus(ctx, album.ID, StatusCompleted, GeneratedImage{ID: "img", URL: "/x.jpg"})
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusCompleted || len(updated.GeneratedImages) != 1 {
		t.Fatalf("unexpected album: %+v", updated)
	}
	if _, err := repo.SetStatus(ctx, album.ID, Status("bogus")); err == nil {
		t.Fatalf("expected unknown status error")
	}
}

func TestRepository_CreateRequiresTitle(t *testing.T) {
	if _, err := NewRepository().Create(context.Background(), NewAlbum{Title: "  "}); err == nil {
		t.Fatalf("expected title error")
	}
}

func TestStatus(t *testing.T) {
	if !StatusSubmitted.Pending() || !StatusInProgress.Pending() {
		t.Fatalf("expected submitted and in_progress to be pending")
	}
	if StatusCompleted.Pending() || StatusFailed.Pending() {
		t.Fatalf("expected terminal statuses not to be pending")
	}
	if StatusInProgress.Label() != "In Progress" {
		t.Fatalf("unexpected label %q", StatusInProgress.Label())
	}
}
