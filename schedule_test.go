package atrium

import (
	"testing"
)

func TestSchedule_DefaultStageOrder(t *testing.T) {
	want := []string{"Prelude", "PreUpdate", "Update", "PostUpdate", "PreRender", "Render", "PostRender", "Finale"}
	stages := defaultStages()

	if len(stages) != len(want) {
		t.Fatalf("expected %d stages, got %d", len(want), len(stages))
	}
	for i, stage := range stages {
		if stage.Name != want[i] {
			t.Errorf("stage %d: expected %s, got %s", i, want[i], stage.Name)
		}
	}
}

func TestSchedule_UseStageInsertsRelative(t *testing.T) {
	app := NewAppBuilder().Build()

	custom := Stage{Name: "Audio"}
	app.UseStage(custom, AfterStage(Update))

	idx := -1
	for i, stage := range app.stages {
		if stage.Name == "Audio" {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatalf("custom stage was not inserted")
	}
	if app.stages[idx-1].Name != "Update" {
		t.Errorf("expected Audio right after Update, got %s before it", app.stages[idx-1].Name)
	}
	if _, ok := app.alwaysRuns["Audio"]; !ok {
		t.Errorf("inserted stage was not initialized")
	}

	before := Stage{Name: "Net"}
	app.UseStage(before, BeforeStage(Prelude))
	if app.stages[0].Name != "Net" {
		t.Errorf("expected Net first, got %s", app.stages[0].Name)
	}
}

func TestSchedule_UseStageUnknownAnchorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for unknown anchor stage")
		}
	}()
	app := NewAppBuilder().Build()
	app.UseStage(Stage{Name: "X"}, AfterStage(Stage{Name: "NoSuchStage"}))
}

func TestSchedule_UseSystemUnknownStagePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for unknown stage")
		}
	}()
	app := NewAppBuilder().Build()
	app.UseSystem(System(func() {}).InStage(Stage{Name: "NoSuchStage"}))
}

func TestSchedule_StatefulSystemInStatelessAppPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for stateful system in stateless app")
		}
	}()
	app := NewAppBuilder().Build()
	app.UseSystem(System(func() {}).InStage(Update).InState(OnExecute(1)))
}

func TestSchedule_UseSystemRouting(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()

	app.UseSystem(System(func() {}).InStage(Update))             // no state clause
	app.UseSystem(System(func() {}).InStage(Update).RunAlways()) // explicit
	app.UseSystem(System(func() {}).InStage(Update).InState(Always()))

	if len(app.alwaysRuns["Update"]) != 3 {
		t.Errorf("expected 3 always systems in Update, got %d", len(app.alwaysRuns["Update"]))
	}

	app.UseSystem(System(func() {}).InStage(Render).InState(OnEnter(1)))
	if len(app.statefulRuns["Render"][1][enter]) != 1 {
		t.Errorf("expected 1 enter system for state 1 in Render")
	}
	if len(app.alwaysRuns["Render"]) != 0 {
		t.Errorf("stateful system leaked into always runs")
	}
}

func TestSchedule_PhaseRouting(t *testing.T) {
	app := NewAppBuilder().UseStates(0, 1).Build()

	counts := map[string]int{}
	app.UseSystem(System(func() { counts["always"]++ }).InStage(Update).RunAlways())
	app.UseSystem(System(func() { counts["enter"]++ }).InStage(Update).InState(OnEnter(0)))
	app.UseSystem(System(func() { counts["execute"]++ }).InStage(Update).InState(OnExecute(0)))
	app.UseSystem(System(func() { counts["exit"]++ }).InStage(Update).InState(OnExit(0)))

	app.state = 0
	app.callSystems(0, enter)
	if counts["always"] != 0 || counts["enter"] != 1 {
		t.Errorf("enter phase ran the wrong systems: %v", counts)
	}

	app.callSystems(0, execute)
	if counts["always"] != 1 || counts["execute"] != 1 {
		t.Errorf("execute phase ran the wrong systems: %v", counts)
	}

	app.callSystems(0, exit)
	if counts["exit"] != 1 {
		t.Errorf("exit phase ran the wrong systems: %v", counts)
	}
	if counts["always"] != 1 {
		t.Errorf("always systems must only run during execute: %v", counts)
	}
}
