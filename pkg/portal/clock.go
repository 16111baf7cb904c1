package portal

import "fmt"

// SessionClock counts seconds spent logged in. It only moves when the feed
// loop ticks.
type SessionClock struct {
	elapsed int64
}

func NewSessionClock() *SessionClock {
	return &SessionClock{}
}

func (sc *SessionClock) Reset() {
	sc.elapsed = 0
}

func (sc *SessionClock) Tick() int64 {
	sc.elapsed++
	return sc.elapsed
}

func (sc *SessionClock) Elapsed() int64 {
	return sc.elapsed
}

func (sc *SessionClock) String() string {
	return FormatElapsed(sc.elapsed)
}

// FormatElapsed renders seconds as MM:SS. Minutes are not capped, so an
// eight hour shift shows as 480:00.
func FormatElapsed(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
