package atrium

import (
	"fmt"
	"slices"
)

// State is an app-level mode. A stateful app declares a contiguous range
// [initial, final]; reaching the final state ends the run loop after its
// exit phase.
type State int

type Stage struct {
	Name string
}

var (
	Prelude    = Stage{Name: "Prelude"}
	PreUpdate  = Stage{Name: "PreUpdate"}
	Update     = Stage{Name: "Update"}
	PostUpdate = Stage{Name: "PostUpdate"}
	PreRender  = Stage{Name: "PreRender"}
	Render     = Stage{Name: "Render"}
	PostRender = Stage{Name: "PostRender"}
	Finale     = Stage{Name: "Finale"}
)

func defaultStages() []Stage {
	return []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale}
}

type statePhase int

const (
	enter statePhase = iota
	execute
	exit
)

type stateScheduleBuilder struct {
	state  State
	phase  statePhase
	always bool
}

func OnEnter(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: enter}
}

func OnExecute(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: execute}
}

func OnExit(state State) stateScheduleBuilder {
	return stateScheduleBuilder{state: state, phase: exit}
}

func Always() stateScheduleBuilder {
	return stateScheduleBuilder{always: true}
}

type systemScheduleBuilder struct {
	system        systemFn
	stage         Stage
	runAlways     bool
	state         State
	phase         statePhase
	stateProvided bool
}

func System(system systemFn) systemScheduleBuilder {
	return systemScheduleBuilder{system: system, stage: Update}
}

func (b systemScheduleBuilder) InStage(s Stage) systemScheduleBuilder {
	b.stage = s
	return b
}

func (b systemScheduleBuilder) InState(s stateScheduleBuilder) systemScheduleBuilder {
	b.runAlways = s.always
	b.state = s.state
	b.phase = s.phase
	b.stateProvided = true
	return b
}

func (b systemScheduleBuilder) RunAlways() systemScheduleBuilder {
	b.runAlways = true
	return b
}

func (b systemScheduleBuilder) InAnyState() systemScheduleBuilder {
	return b.RunAlways()
}

type stagePosition int

const (
	stageBefore stagePosition = iota
	stageAfter
)

type stagePositionBuilder struct {
	position stagePosition
	target   Stage
}

func BeforeStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageBefore, target: s}
}

func AfterStage(s Stage) stagePositionBuilder {
	return stagePositionBuilder{position: stageAfter, target: s}
}

// UseStage inserts a custom stage relative to an existing one. Panics when
// the anchor stage is unknown.
func (app *App) UseStage(stage Stage, where stagePositionBuilder) *App {
	idx := -1
	for i, s := range app.stages {
		if s.Name == where.target.Name {
			idx = i
			break
		}
	}
	if idx == -1 {
		panic(fmt.Sprintf("stage %v not found", where.target.Name))
	}

	if where.position == stageAfter {
		idx += 1
	}
	app.stages = slices.Insert(app.stages, idx, stage)
	app.initStage(stage)

	return app
}

// UseSystem registers a system under its stage. Systems without a state
// clause (or with RunAlways/InAnyState) run every frame; stateful ones run
// in their declared state and phase only.
func (app *App) UseSystem(b systemScheduleBuilder) *App {
	if _, ok := app.alwaysRuns[b.stage.Name]; !ok {
		panic(fmt.Sprintf("stage %v doesn't exist", b.stage.Name))
	}

	if b.runAlways || !b.stateProvided {
		app.alwaysRuns[b.stage.Name] = append(app.alwaysRuns[b.stage.Name], b.system)
		return app
	}

	if !app.stateful {
		panic("trying to use a stateful system in a stateless app")
	}
	byState, ok := app.statefulRuns[b.stage.Name][b.state]
	if !ok {
		panic(fmt.Sprintf("state %v doesn't exist", b.state))
	}

	byState[b.phase] = append(byState[b.phase], b.system)
	return app
}

func (app *App) initStage(stage Stage) {
	app.alwaysRuns[stage.Name] = make([]systemFn, 0)

	if app.stateful {
		app.statefulRuns[stage.Name] = make(map[State]map[statePhase][]systemFn)
		for state := app.initialState; state <= app.finalState; state += 1 {
			app.statefulRuns[stage.Name][state] = map[statePhase][]systemFn{
				enter:   make([]systemFn, 0),
				execute: make([]systemFn, 0),
				exit:    make([]systemFn, 0),
			}
		}
	}
}
