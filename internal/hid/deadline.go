package hid

import (
	"fmt"
	"time"

	swaperr "github.com/hbarlabs/sswap/internal/errors"
)

// DeadlineMillis is a swap deadline as a Unix timestamp in milliseconds.
// The SaucerSwap router reads deadlines in milliseconds, unlike the
// second-based Uniswap convention, so a deadline computed with time
// in seconds is three orders of magnitude too small and reverts every
// swap. Validate catches that class of mistake before any RPC call.
type DeadlineMillis int64

// minPlausibleMillis is 2001-09-09T01:46:40Z expressed in milliseconds.
// Any current Unix timestamp in seconds is below it, so values under the
// threshold can only be seconds-based mistakes.
const minPlausibleMillis = 1_000_000_000_000

// DefaultDeadlineWindow matches the original client's 10 minute window.
const DefaultDeadlineWindow = 10 * time.Minute

func DeadlineAt(t time.Time) DeadlineMillis {
	return DeadlineMillis(t.UnixMilli())
}

func DeadlineIn(window time.Duration) DeadlineMillis {
	return DeadlineAt(time.Now().Add(window))
}

func (d DeadlineMillis) Int64() int64 { return int64(d) }

func (d DeadlineMillis) Time() time.Time {
	return time.UnixMilli(int64(d))
}

func (d DeadlineMillis) Validate(now time.Time) error {
	if d < minPlausibleMillis {
		return swaperr.New(swaperr.CodeUsage,
			fmt.Sprintf("deadline %d is not a millisecond timestamp (did you pass seconds?)", int64(d)))
	}
	if int64(d) <= now.UnixMilli() {
		return swaperr.New(swaperr.CodeUsage,
			fmt.Sprintf("deadline %d is in the past", int64(d)))
	}
	return nil
}
