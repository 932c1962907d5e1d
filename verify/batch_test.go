package verify_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/wippyai/memtrace/verify"
)

func TestBatch(t *testing.T) {
	codec := newMemCodec()
	var paths []string
	for i := 0; i < 20; i++ {
		p := fmt.Sprintf("t%02d", i)
		paths = append(paths, p)
		switch i % 4 {
		case 0:
			codec.traces[p] = clean
		case 1:
			codec.traces[p] = repairable
		case 2:
			codec.traces[p] = unrepairable
		case 3:
			// missing, read fails
		}
	}

	var order []string
	results := verify.Batch(context.Background(), paths,
		verify.WithCodec(codec),
		verify.WithRepair(true),
		verify.WithConcurrency(4),
		verify.WithProgress(func(br verify.BatchResult) {
			order = append(order, br.Path)
		}),
	)

	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, br := range results {
		if br.Path != paths[i] {
			t.Errorf("result %d path = %q, want %q", i, br.Path, paths[i])
		}
		switch i % 4 {
		case 0:
			if br.Err != nil || !br.Result.Valid() {
				t.Errorf("%s: expected valid", br.Path)
			}
		case 1:
			if br.Err != nil || br.Result.RepairPath == "" {
				t.Errorf("%s: expected repair", br.Path)
			}
		case 2:
			if br.Err != nil || br.Result.Valid() || br.Result.RepairPath != "" {
				t.Errorf("%s: expected invalid without repair", br.Path)
			}
		case 3:
			if br.Err == nil || br.Result != nil {
				t.Errorf("%s: expected read error", br.Path)
			}
		}
	}

	if len(order) != len(paths) {
		t.Fatalf("progress called %d times, want %d", len(order), len(paths))
	}
	for i := range order {
		if order[i] != paths[i] {
			t.Fatalf("progress out of order at %d: %q", i, order[i])
		}
	}
	if len(codec.written) != 5 {
		t.Errorf("wrote %d repaired traces, want 5", len(codec.written))
	}
}

func TestBatch_Canceled(t *testing.T) {
	codec := newMemCodec()
	codec.traces["a"] = clean

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := verify.Batch(ctx, []string{"a", "b"}, verify.WithCodec(codec))
	for _, br := range results {
		if br.Err == nil {
			t.Errorf("%s: expected error after cancellation", br.Path)
		}
	}
}

func TestBatch_Empty(t *testing.T) {
	if got := verify.Batch(context.Background(), nil); len(got) != 0 {
		t.Errorf("got %d results", len(got))
	}
}
