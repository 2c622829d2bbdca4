package atrium

// LifetimeComponent removes its entity once the remaining time runs out.
// Toasts and other transient HUD entities carry one.
type LifetimeComponent struct {
	TimeLeft float32
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(lifetimeSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func lifetimeSystem(time *Time, cmd *Commands) {
	if time.Dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= time.Dt
		if lt.TimeLeft <= 0 {
			cmd.RemoveEntity(eid)
		}
		return true
	})
}
