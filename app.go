package atrium

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// App drives the frame loop: every iteration runs each stage in order, and
// within a stage the always-on systems first, then the systems scheduled for
// the current state and phase. Commands are flushed after every stage so a
// stage observes what the previous one spawned. State changes requested
// during a frame are applied once at the end of it.
type App struct {
	stateful     bool
	initialState State
	finalState   State
	state        State

	transitionPending bool
	nextState         State

	stages        []Stage
	statefulRuns  map[string]map[State]map[statePhase][]systemFn
	alwaysRuns    map[string][]systemFn
	resources     map[reflect.Type]any
	ecs           *Ecs

	pendingSpawns      []pendingSpawn
	pendingDespawns    []EntityId
	pendingAttachments []pendingComponents
	pendingDetachments []pendingComponents
}

type pendingSpawn struct {
	entity     EntityId
	components []any
}

type pendingComponents struct {
	entity     EntityId
	components []any
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// Run drives the frame loop. A stateful app returns once the final state's
// exit phase has run; a stateless app loops forever and never returns.
func (app *App) Run() {
	log := app.Logger()

	if app.stateful {
		log.Debugf("run loop starting in state %d", app.initialState)
		app.state = app.initialState
		app.callSystems(app.state, enter)
	} else {
		log.Debugf("run loop starting (stateless)")
	}

	for {
		app.callSystems(app.state, execute)

		if !app.stateful {
			continue
		}

		if app.transitionPending {
			app.transitionPending = false
			app.executeChangeState(app.nextState)
		}

		if app.state == app.finalState {
			app.callSystems(app.state, exit)
			return
		}
	}
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		if phase == execute {
			for _, system := range app.alwaysRuns[stage.Name] {
				app.callSystem(system)
			}
		}

		if app.stateful {
			for _, system := range app.statefulRuns[stage.Name][state][phase] {
				app.callSystem(system)
			}
		}

		app.FlushCommands()
	}
}

func (app *App) changeState(next State) {
	app.nextState = next
	app.transitionPending = true
}

func (app *App) executeChangeState(next State) {
	app.callSystems(app.state, exit)
	app.state = next
	app.callSystems(app.state, enter)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		t := reflect.TypeOf(resource)
		if _, dup := app.resources[t.Elem()]; dup {
			panic(fmt.Sprintf("%s is already in resources", t))
		}
		app.resources[t.Elem()] = resource
	}
	return app
}

func (app *App) callSystem(system systemFn) {
	app.callSystemInternal(system)
}

var typeOfCommands = reflect.TypeOf(Commands{})

// callSystemInternal resolves a system's parameters by type: *Commands gets
// a fresh handle, any other pointer parameter must match an installed
// resource. Unresolvable parameters are programmer errors.
func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())
	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("system %s: parameter %d must be a pointer, got %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(), i, argType))
		}
		wantType := argType.Elem()

		if wantType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
			continue
		}

		if resource, ok := app.resources[wantType]; ok {
			args[i] = reflect.NewAt(wantType, reflect.ValueOf(resource).UnsafePointer())
			continue
		}

		panic(fmt.Sprintf("unable to resolve system dependency\nsystem: %s\ndependency: %s",
			runtime.FuncForPC(systemValue.Pointer()).Name(), argType))
	}

	systemValue.Call(args)
}

// FlushCommands applies buffered structural changes. Despawns go first so
// later buckets never touch dead entities; detachments go last so an
// attach+detach pair buffered in one stage nets out against the final
// composition.
func (app *App) FlushCommands() {
	if len(app.pendingSpawns) == 0 && len(app.pendingDespawns) == 0 &&
		len(app.pendingAttachments) == 0 && len(app.pendingDetachments) == 0 {
		return
	}

	for _, entity := range app.pendingDespawns {
		app.ecs.despawn(entity)
	}
	app.pendingDespawns = app.pendingDespawns[:0]

	for _, spawn := range app.pendingSpawns {
		app.ecs.insert(spawn.entity, spawn.components...)
	}
	app.pendingSpawns = app.pendingSpawns[:0]

	for _, attach := range app.pendingAttachments {
		app.ecs.attach(attach.entity, attach.components...)
	}
	app.pendingAttachments = app.pendingAttachments[:0]

	for _, detach := range app.pendingDetachments {
		app.ecs.detach(detach.entity, detach.components...)
	}
	app.pendingDetachments = app.pendingDetachments[:0]
}
