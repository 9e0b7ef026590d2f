// Copyright (c) 2017-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package backoff

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy is a schedule of delays in milliseconds, tries past the end of the schedule use the last delay
type Policy struct {
	Millis []int
}

// FiveSec grows to five seconds over ten tries
var FiveSec = Policy{Millis: []int{500, 1000, 1500, 2000, 2500, 3000, 3500, 4000, 4500, 5000}}

// Duration is the delay before try n, jittered between half and one and a half times the scheduled delay
func (p Policy) Duration(n int) time.Duration {
	if len(p.Millis) == 0 {
		return 0
	}

	n = min(max(n, 0), len(p.Millis)-1)

	return jitter(p.Millis[n])
}

// For calls cb until it succeeds or ctx is done, try numbers passed to cb start at 1
func (p Policy) For(ctx context.Context, cb func(try int) error) error {
	for try := 1; ; try++ {
		err := ctx.Err()
		if err != nil {
			return err
		}

		if cb(try) == nil {
			return nil
		}

		err = Sleep(ctx, p.Duration(try-1))
		if err != nil {
			return err
		}
	}
}

// Sleep sleeps for d or until ctx is done, returning the context error when interrupted
func Sleep(ctx context.Context, d time.Duration) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func jitter(millis int) time.Duration {
	if millis <= 0 {
		return 0
	}

	return time.Duration(millis/2+rand.IntN(millis+1)) * time.Millisecond
}
