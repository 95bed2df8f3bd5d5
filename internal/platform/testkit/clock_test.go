package testkit

import (
	"context"
	"testing"
	"time"
)

func TestClockAdvanceAndSleep(t *testing.T) {
	t.Parallel()
	c := NewClock(time.Time{})
	t0 := c.Now()

	c.Advance(time.Second)
	if got := c.Now().Sub(t0); got != time.Second {
		t.Fatalf("advance: got %v", got)
	}
	if err := c.Sleep(context.Background(), 250*time.Millisecond); err != nil {
		t.Fatalf("sleep: %v", err)
	}
	if got := c.Now().Sub(t0); got != 1250*time.Millisecond {
		t.Fatalf("sleep should advance, got %v", got)
	}
	if s := c.Sleeps(); len(s) != 1 || s[0] != 250*time.Millisecond {
		t.Fatalf("sleeps = %v", s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Sleep(ctx, time.Second); err == nil {
		t.Fatalf("sleep on canceled ctx should fail")
	}
}
