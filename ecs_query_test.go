package atrium

import (
	"testing"
)

func queryTestCommands() (*Commands, *Ecs) {
	ecs := MakeEcs()
	app := &App{ecs: &ecs}
	return &Commands{app: app}, &ecs
}

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	cmd, ecs := queryTestCommands()
	ecs.spawn(Comp1{a: 1})                                 // comp1 only: no match
	id2 := ecs.spawn(Comp1{a: 2}, Comp2{b: 1.37})          // both: match
	id3 := ecs.spawn(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // both plus extra: match
	ecs.spawn(Comp1{a: 4}, Comp3{})                        // comp1 plus extra: no match
	ecs.spawn(Comp2{b: 3.14})                              // comp2 only: no match

	got := make(map[EntityId]Comp1)
	MakeQuery2[Comp1, Comp2](cmd).Map(func(entity EntityId, c1 *Comp1, c2 *Comp2) bool {
		got[entity] = *c1
		return true
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[id2].a != 2 {
		t.Errorf("entity %v: expected a=2, got %v", id2, got[id2])
	}
	if got[id3].a != 3 {
		t.Errorf("entity %v: expected a=3, got %v", id3, got[id3])
	}
}

func TestQuery_MutationThroughPointer(t *testing.T) {
	type Counter struct{ n int }

	cmd, ecs := queryTestCommands()
	id := ecs.spawn(Counter{n: 1})

	MakeQuery1[Counter](cmd).Map(func(entity EntityId, c *Counter) bool {
		c.n = 42
		return true
	})

	tbl := ecs.tables[ecs.entityTable[id]]
	got := columnGet(tbl.columns[compIdOf[Counter](ecs)], int(tbl.slots[id])).Interface().(Counter)
	if got.n != 42 {
		t.Errorf("mutation through the query pointer did not stick, got %v", got)
	}
}

func TestQuery_EarlyStop(t *testing.T) {
	type Tag struct{ v int }

	cmd, ecs := queryTestCommands()
	for i := 0; i < 5; i++ {
		ecs.spawn(Tag{v: i})
	}

	visits := 0
	MakeQuery1[Tag](cmd).Map(func(entity EntityId, tag *Tag) bool {
		visits++
		return false
	})

	if visits != 1 {
		t.Errorf("expected iteration to stop after the first row, visited %d", visits)
	}
}

func TestQuery_Optionals(t *testing.T) {
	type Base struct{ v int }
	type Extra struct{ w int }

	cmd, ecs := queryTestCommands()
	plain := ecs.spawn(Base{v: 1})
	rich := ecs.spawn(Base{v: 2}, Extra{w: 20})

	seen := make(map[EntityId]bool)
	MakeQuery2[Base, Extra](cmd).Map(func(entity EntityId, base *Base, extra *Extra) bool {
		seen[entity] = extra != nil
		if extra != nil && extra.w != 20 {
			t.Errorf("unexpected optional value %v", *extra)
		}
		return true
	}, Extra{})

	if len(seen) != 2 {
		t.Fatalf("optional query should visit both entities, got %d", len(seen))
	}
	if seen[plain] {
		t.Errorf("entity without the optional component should receive nil")
	}
	if !seen[rich] {
		t.Errorf("entity with the optional component should receive it")
	}
}

func TestQuery_NoMatches(t *testing.T) {
	type Lonely struct{ v int }

	cmd, _ := queryTestCommands()
	ran := false
	MakeQuery1[Lonely](cmd).Map(func(entity EntityId, l *Lonely) bool {
		ran = true
		return true
	})
	if ran {
		t.Errorf("query over an empty world should not invoke the callback")
	}
}
