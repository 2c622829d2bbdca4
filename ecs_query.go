package atrium

import (
	"reflect"
)

// Queries iterate every table whose key covers the required components.
// Optional components are declared by passing their zero values to Map;
// where a table lacks an optional column the callback receives nil for it.
// Returning false from the callback stops the iteration early.

type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }
type Query4[A, B, C, D any] struct{ ecs *Ecs }
type Query5[A, B, C, D, E any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }
func MakeQuery4[A, B, C, D any](cmd *Commands) Query4[A, B, C, D] {
	return Query4[A, B, C, D]{ecs: cmd.app.ecs}
}
func MakeQuery5[A, B, C, D, E any](cmd *Commands) Query5[A, B, C, D, E] {
	return Query5[A, B, C, D, E]{ecs: cmd.app.ecs}
}

func (q Query1[A]) Map(m func(EntityId, *A) bool, optionals ...any) {
	idA := compIdOf[A](q.ecs)
	opt := optionalIds(q.ecs, optionals...)

	for _, tbl := range q.ecs.tables {
		colA, ok := columnIn[A](tbl, idA, opt)
		if !ok {
			continue
		}

		for entity, s := range tbl.slots {
			if !m(entity, cell(colA, s)) {
				return
			}
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool, optionals ...any) {
	idA, idB := compIdOf[A](q.ecs), compIdOf[B](q.ecs)
	opt := optionalIds(q.ecs, optionals...)

	for _, tbl := range q.ecs.tables {
		colA, ok := columnIn[A](tbl, idA, opt)
		if !ok {
			continue
		}
		colB, ok := columnIn[B](tbl, idB, opt)
		if !ok {
			continue
		}

		for entity, s := range tbl.slots {
			if !m(entity, cell(colA, s), cell(colB, s)) {
				return
			}
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool, optionals ...any) {
	idA, idB, idC := compIdOf[A](q.ecs), compIdOf[B](q.ecs), compIdOf[C](q.ecs)
	opt := optionalIds(q.ecs, optionals...)

	for _, tbl := range q.ecs.tables {
		colA, ok := columnIn[A](tbl, idA, opt)
		if !ok {
			continue
		}
		colB, ok := columnIn[B](tbl, idB, opt)
		if !ok {
			continue
		}
		colC, ok := columnIn[C](tbl, idC, opt)
		if !ok {
			continue
		}

		for entity, s := range tbl.slots {
			if !m(entity, cell(colA, s), cell(colB, s), cell(colC, s)) {
				return
			}
		}
	}
}

func (q Query4[A, B, C, D]) Map(m func(EntityId, *A, *B, *C, *D) bool, optionals ...any) {
	idA, idB, idC, idD := compIdOf[A](q.ecs), compIdOf[B](q.ecs), compIdOf[C](q.ecs), compIdOf[D](q.ecs)
	opt := optionalIds(q.ecs, optionals...)

	for _, tbl := range q.ecs.tables {
		colA, ok := columnIn[A](tbl, idA, opt)
		if !ok {
			continue
		}
		colB, ok := columnIn[B](tbl, idB, opt)
		if !ok {
			continue
		}
		colC, ok := columnIn[C](tbl, idC, opt)
		if !ok {
			continue
		}
		colD, ok := columnIn[D](tbl, idD, opt)
		if !ok {
			continue
		}

		for entity, s := range tbl.slots {
			if !m(entity, cell(colA, s), cell(colB, s), cell(colC, s), cell(colD, s)) {
				return
			}
		}
	}
}

func (q Query5[A, B, C, D, E]) Map(m func(EntityId, *A, *B, *C, *D, *E) bool, optionals ...any) {
	idA, idB, idC := compIdOf[A](q.ecs), compIdOf[B](q.ecs), compIdOf[C](q.ecs)
	idD, idE := compIdOf[D](q.ecs), compIdOf[E](q.ecs)
	opt := optionalIds(q.ecs, optionals...)

	for _, tbl := range q.ecs.tables {
		colA, ok := columnIn[A](tbl, idA, opt)
		if !ok {
			continue
		}
		colB, ok := columnIn[B](tbl, idB, opt)
		if !ok {
			continue
		}
		colC, ok := columnIn[C](tbl, idC, opt)
		if !ok {
			continue
		}
		colD, ok := columnIn[D](tbl, idD, opt)
		if !ok {
			continue
		}
		colE, ok := columnIn[E](tbl, idE, opt)
		if !ok {
			continue
		}

		for entity, s := range tbl.slots {
			if !m(entity, cell(colA, s), cell(colB, s), cell(colC, s), cell(colD, s), cell(colE, s)) {
				return
			}
		}
	}
}

// columnIn resolves one column of a table: the typed slice when present,
// nil-but-included when the component was declared optional, excluded
// otherwise (the table does not match the query).
func columnIn[T any](tbl *table, id compId, opt set[compId]) ([]T, bool) {
	if raw, has := tbl.columns[id]; has {
		return raw.([]T), true
	}
	if _, optional := opt[id]; optional {
		return nil, true
	}
	return nil, false
}

func cell[T any](col []T, s slot) *T {
	if col == nil {
		return nil
	}
	return &col[s]
}

func compIdOf[T any](ecs *Ecs) compId {
	var zero T
	return ecs.compIdFor(reflect.TypeOf(zero))
}

func optionalIds(ecs *Ecs, components ...any) set[compId] {
	res := make(set[compId])
	for _, c := range components {
		t := reflect.TypeOf(c)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		res[ecs.compIdFor(t)] = struct{}{}
	}
	return res
}
