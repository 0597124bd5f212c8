package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestDebouncerMergesBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan ChangeEvent)
	d := NewDebouncer(input, 50*time.Millisecond, time.Second)
	d.Start(ctx)

	input <- ChangeEvent{Roles: []string{"b"}, Paths: []string{"/x/b.tsv"}}
	input <- ChangeEvent{Roles: []string{"a"}, Paths: []string{"/x/a.tsv"}}
	input <- ChangeEvent{Roles: []string{"b"}, Paths: []string{"/x/b.tsv"}}

	select {
	case got := <-d.Output():
		if !slices.Equal(got.Roles, []string{"a", "b"}) {
			t.Errorf("Roles = %v, want [a b]", got.Roles)
		}
		if len(got.Paths) != 2 {
			t.Errorf("Paths = %v, want two distinct paths", got.Paths)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for debounced event")
	}

	select {
	case extra := <-d.Output():
		t.Errorf("unexpected second batch %+v", extra)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncerMaxWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	input := make(chan ChangeEvent)
	d := NewDebouncer(input, time.Hour, 50*time.Millisecond)
	d.Start(ctx)

	input <- ChangeEvent{Roles: []string{"pool"}}

	select {
	case got := <-d.Output():
		if !slices.Equal(got.Roles, []string{"pool"}) {
			t.Errorf("Roles = %v", got.Roles)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("max wait did not force a flush")
	}
}

func TestDebouncerFlushesOnClose(t *testing.T) {
	input := make(chan ChangeEvent, 1)
	d := NewDebouncer(input, time.Hour, time.Hour)
	d.Start(context.Background())

	input <- ChangeEvent{Roles: []string{"a"}}
	close(input)

	got, ok := <-d.Output()
	if !ok || !slices.Equal(got.Roles, []string{"a"}) {
		t.Errorf("pending batch lost on close: %+v, %v", got, ok)
	}
	if _, ok := <-d.Output(); ok {
		t.Errorf("output not closed after input closed")
	}
}

func TestFileWatcherReportsInputChanges(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.tsv")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{a, other} {
		if err := os.WriteFile(p, []byte("1 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	fw, err := NewFileWatcher([]Input{{Role: "a", Path: a}, {Role: "pool"}})
	if err != nil {
		t.Fatalf("NewFileWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := fw.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(other, []byte("ignored\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(a, []byte("1 2\n2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-fw.Events():
		if !slices.Equal(got.Roles, []string{"a"}) {
			t.Errorf("Roles = %v, want [a]", got.Roles)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change event")
	}

	cancel()
	for range fw.Events() {
		// drain until the watcher closes the channel
	}
}
