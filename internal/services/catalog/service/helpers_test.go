package service

import (
	"shelfsync/internal/core/ratelimit"
	kit "shelfsync/internal/platform/testkit"
)

func ratelimitOpts(clk *kit.Clock) ratelimit.Options {
	return ratelimit.Options{Max: 1000, Now: clk.Now, Sleep: clk.Sleep}
}
