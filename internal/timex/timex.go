// Package timex centralizes the handful of timestamp conventions used
// across the runtime core instead of scattering time.Now() calls.
package timex

import "time"

// NowMs returns Unix milliseconds as int64, used for switch last-changed
// timestamps and high-score entry dates.
func NowMs() int64 { return time.Now().UnixMilli() }

// Monotonic returns a time.Time whose subtraction from another Monotonic()
// result is immune to wall-clock adjustments. time.Now() already carries a
// monotonic reading on every supported platform; this wrapper exists so
// call sites say what they mean.
func Monotonic() time.Time { return time.Now() }
