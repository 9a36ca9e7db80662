package otp

import "time"

// Timer is a scheduled one-shot callback.
type Timer interface {
	Stop() bool
}

// Clock schedules one-shot callbacks. The workflow never uses repeating
// tickers: each tick schedules the next one.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
