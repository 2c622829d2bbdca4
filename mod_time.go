package atrium

import (
	"time"
)

// MaxFrameDelta caps the per-frame delta in seconds. After a stall (window
// drag, debugger pause, minimized app) the first frame back would otherwise
// integrate a huge step; clamping turns it into one ordinary-length tick.
const MaxFrameDelta float32 = 0.1

type Time struct {
	Now time.Time
	Dt  float32 // seconds, clamped to MaxFrameDelta
}

type TimeModule struct {
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{Now: time.Now()})
	app.UseSystem(System(clockSystem).InStage(Prelude).RunAlways())
}

func clockSystem(clock *Time) {
	now := time.Now()

	dt := float32(now.Sub(clock.Now).Seconds())
	if dt < 0 {
		dt = 0
	}
	if dt > MaxFrameDelta {
		dt = MaxFrameDelta
	}

	clock.Dt = dt
	clock.Now = now
}
