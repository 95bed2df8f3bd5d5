package service

import (
	"context"
	"testing"
	"time"

	perr "shelfsync/internal/platform/errors"
	"shelfsync/internal/platform/store/storetest"
	kit "shelfsync/internal/platform/testkit"
	"shelfsync/internal/services/tbr/domain"
)

func ids(t *testing.T, s *Service) []string {
	t.Helper()
	list, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.ID
	}
	return out
}

func same(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestAddRemoveRestore(t *testing.T) {
	for name, persisted := range map[string]bool{"store": true, "memory": false} {
		t.Run(name, func(t *testing.T) {
			clk := kit.NewClock(time.Now())
			var s *Service
			if persisted {
				s = New(storetest.Open(t, clk), nil, clk.Now)
			} else {
				s = New(nil, nil, clk.Now)
			}
			ctx := context.Background()

			for _, id := range []string{"a", "b", "c"} {
				if ok, err := s.Add(ctx, domain.AddInput{ID: id, Title: "T" + id}); !ok || err != nil {
					t.Fatalf("add %s: %v %v", id, ok, err)
				}
			}
			if ok, _ := s.Add(ctx, domain.AddInput{ID: " b "}); ok {
				t.Fatalf("duplicate id must not be added")
			}
			if got := ids(t, s); !same(got, []string{"c", "b", "a"}) {
				t.Fatalf("newest first: %v", got)
			}

			rm, err := s.Remove(ctx, "b")
			if err != nil || rm.Index != 1 || rm.Entry.Title != "Tb" {
				t.Fatalf("remove: %+v %v", rm, err)
			}
			if _, err := s.Remove(ctx, "b"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
				t.Fatalf("second remove: %v", err)
			}
			if ok, err := s.Restore(ctx, "b"); !ok || err != nil {
				t.Fatalf("restore: %v %v", ok, err)
			}
			if got := ids(t, s); !same(got, []string{"c", "b", "a"}) {
				t.Fatalf("restore must use the old position: %v", got)
			}
			if ok, _ := s.Restore(ctx, "b"); ok {
				t.Fatalf("restore is one shot")
			}

			n, err := s.Clear(ctx)
			if err != nil || n != 3 || len(ids(t, s)) != 0 {
				t.Fatalf("clear: %d %v", n, err)
			}
		})
	}
}

func TestRestoreClampsPosition(t *testing.T) {
	s := New(nil, nil, nil)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, _ = s.Add(ctx, domain.AddInput{ID: id})
	}
	if _, err := s.Remove(ctx, "a"); err != nil { // index 2
		t.Fatalf("remove: %v", err)
	}
	_, _ = s.Remove(ctx, "b")
	_, _ = s.Restore(ctx, "a")
	if got := ids(t, s); !same(got, []string{"c", "a"}) {
		t.Fatalf("clamped restore: %v", got)
	}
}

func TestListSurvivesRestart(t *testing.T) {
	clk := kit.NewClock(time.Now())
	kv := storetest.Open(t, clk)
	ctx := context.Background()
	if _, err := New(kv, nil, clk.Now).Add(ctx, domain.AddInput{ID: "42", Title: "Dune"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	clk.Advance(365 * 24 * time.Hour)
	list, err := New(kv, nil, clk.Now).List(ctx)
	if err != nil || len(list) != 1 || list[0].Title != "Dune" {
		t.Fatalf("list after restart: %+v %v", list, err)
	}
	if _, err := New(kv, nil, nil).Add(ctx, domain.AddInput{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty id: %v", err)
	}
}

func TestRestoreAfterRestart(t *testing.T) {
	clk := kit.NewClock(time.Now())
	kv := storetest.Open(t, clk)
	ctx := context.Background()

	first := New(kv, nil, clk.Now)
	for _, id := range []string{"a", "b"} {
		if _, err := first.Add(ctx, domain.AddInput{ID: id}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := first.Remove(ctx, "b"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	second := New(kv, nil, clk.Now)
	if ok, err := second.Restore(ctx, "b"); !ok || err != nil {
		t.Fatalf("restore in a new process: %v %v", ok, err)
	}
	if got := ids(t, second); !same(got, []string{"b", "a"}) {
		t.Fatalf("restored order: %v", got)
	}
	if ok, _ := New(kv, nil, clk.Now).Restore(ctx, "b"); ok {
		t.Fatalf("restore is one shot")
	}
}
