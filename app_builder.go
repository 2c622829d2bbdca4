package atrium

import (
	"reflect"
)

// Module is the unit of composition: a module installs its resources and
// systems into the app. Install runs once, at build time, in the order the
// modules were added - modules that share a stage rely on that order.
type Module interface {
	Install(app *App, cmd *Commands)
}

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	ecs := MakeEcs()
	return &AppBuilder{app: &App{
		resources:    make(map[reflect.Type]any),
		statefulRuns: make(map[string]map[State]map[statePhase][]systemFn),
		alwaysRuns:   make(map[string][]systemFn),
		ecs:          &ecs,
	}}
}

// UseStates makes the app stateful over the contiguous range
// [initial, final]. Must be called before Build so module installs can
// schedule against every state.
func (b *AppBuilder) UseStates(initial State, final State) *AppBuilder {
	b.app.stateful = true
	b.app.initialState = initial
	b.app.finalState = final
	return b
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)
	return b
}

func (b *AppBuilder) Build() *App {
	app := b.app

	app.stages = defaultStages()
	for _, stage := range app.stages {
		app.initStage(stage)
	}

	commands := &Commands{app: app}
	for _, module := range b.modules {
		module.Install(app, commands)
	}
	app.FlushCommands()

	return app
}
