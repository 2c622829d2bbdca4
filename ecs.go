package atrium

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type compId uint32
type tableId uint64

// tableKey is the canonical identity of a table: the sorted, deduplicated
// list of component ids stored in it. tableId is its fnv hash - cheap to
// compare, but only the key is collision-free.
type tableKey []compId

type slot int
type set[T comparable] = map[T]struct{}

// Ecs stores entities grouped by component composition. Each distinct
// composition gets one table with a typed column per component; an entity
// occupies one slot across all columns of its table. Adding or removing a
// component moves the entity to the table of the new composition.
type Ecs struct {
	tables      map[tableId]*table
	entityTable map[EntityId]tableId

	entityIdLock    sync.Mutex
	entityIdCounter EntityId

	compIdLock    sync.Mutex
	compIdCounter compId
	compIdByType  map[reflect.Type]compId
	compTypeById  map[compId]reflect.Type
}

type table struct {
	id      tableId
	key     tableKey
	slots   map[EntityId]slot
	columns map[compId]any // []T per component, via reflection
	free    []slot
}

func MakeEcs() Ecs {
	return Ecs{
		tables:       make(map[tableId]*table),
		entityTable:  make(map[EntityId]tableId),
		compIdByType: make(map[reflect.Type]compId),
		compTypeById: make(map[compId]reflect.Type),
	}
}

func (ecs *Ecs) spawn(components ...any) EntityId {
	return ecs.insert(ecs.nextEntityId(), components...)
}

func (ecs *Ecs) insert(entity EntityId, components ...any) EntityId {
	tbl := ecs.tableFor(ecs.keyOf(components...))

	s := ecs.reserveSlot(tbl)
	tbl.slots[entity] = s
	for _, component := range components {
		ecs.setCell(tbl, s, component)
	}
	ecs.entityTable[entity] = tbl.id

	return entity
}

func (ecs *Ecs) despawn(entity EntityId) {
	ecs.freeSlot(entity)
}

func (ecs *Ecs) attach(entity EntityId, components ...any) {
	src := ecs.tables[ecs.entityTable[entity]]
	srcSlot := src.slots[entity]

	dst := ecs.tableFor(mergeKeys(src.key, ecs.keyOf(components...)))
	dstSlot := ecs.reserveSlot(dst)

	ecs.copyRow(src, srcSlot, dst, dstSlot)
	for _, component := range components {
		ecs.setCell(dst, dstSlot, component)
	}

	ecs.freeSlot(entity)
	dst.slots[entity] = dstSlot
	ecs.entityTable[entity] = dst.id
}

func (ecs *Ecs) detach(entity EntityId, components ...any) {
	src := ecs.tables[ecs.entityTable[entity]]
	srcSlot := src.slots[entity]

	dropped := make(set[compId])
	for _, id := range ecs.keyOf(components...) {
		dropped[id] = struct{}{}
	}
	var dstKey tableKey
	for _, id := range src.key {
		if _, drop := dropped[id]; !drop {
			dstKey = append(dstKey, id)
		}
	}

	dst := ecs.tableFor(dstKey)
	dstSlot := ecs.reserveSlot(dst)

	ecs.copyRow(src, srcSlot, dst, dstSlot)

	ecs.freeSlot(entity)
	dst.slots[entity] = dstSlot
	ecs.entityTable[entity] = dst.id
}

// copyRow copies the components shared by both tables. The shorter key is
// the shared subset: attach grows the key, detach shrinks it.
func (ecs *Ecs) copyRow(src *table, srcSlot slot, dst *table, dstSlot slot) {
	shared := src.key
	if len(dst.key) < len(shared) {
		shared = dst.key
	}
	for _, id := range shared {
		columnSet(dst.columns[id], int(dstSlot), columnGet(src.columns[id], int(srcSlot)))
	}
}

func (ecs *Ecs) setCell(tbl *table, s slot, component any) {
	t := reflect.TypeOf(component)
	v := reflect.ValueOf(component)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
		v = v.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic(fmt.Errorf("component must be a struct or pointer to struct, got %s", t.Kind()))
	}

	columnSet(tbl.columns[ecs.compIdFor(t)], int(s), v)
}

func (ecs *Ecs) freeSlot(entity EntityId) {
	tbl := ecs.tables[ecs.entityTable[entity]]

	tbl.free = append(tbl.free, tbl.slots[entity])
	delete(tbl.slots, entity)
	delete(ecs.entityTable, entity)
}

func (ecs *Ecs) tableFor(key tableKey) *table {
	id := hashKey(key)
	if tbl, ok := ecs.tables[id]; ok {
		if !slices.Equal(tbl.key, key) {
			panic(fmt.Errorf("table hash collision: %v vs %v both map to %d", tbl.key, key, id))
		}
		return tbl
	}

	tbl := &table{
		id:      id,
		key:     key,
		slots:   make(map[EntityId]slot),
		columns: make(map[compId]any),
	}
	for _, compId := range key {
		tbl.columns[compId] = columnMake(ecs.compTypeById[compId])
	}
	ecs.tables[id] = tbl

	return tbl
}

// reserveSlot pops a freed slot if one exists; otherwise every column grows
// by one zero value. Without free slots len(slots) equals the column length,
// so it doubles as the next fresh index.
func (ecs *Ecs) reserveSlot(tbl *table) slot {
	if n := len(tbl.free); n > 0 {
		s := tbl.free[n-1]
		tbl.free = tbl.free[:n-1]
		return s
	}

	s := slot(len(tbl.slots))
	for _, id := range tbl.key {
		tbl.columns[id] = columnAppend(tbl.columns[id], reflect.Zero(ecs.compTypeById[id]))
	}
	return s
}

func (ecs *Ecs) keyOf(components ...any) tableKey {
	var key tableKey
	for _, component := range components {
		t := reflect.TypeOf(component)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			panic("component must be a struct or pointer to struct")
		}
		key = append(key, ecs.compIdFor(t))
	}
	return normalizeKey(key)
}

func mergeKeys(a tableKey, b tableKey) tableKey {
	return normalizeKey(append(slices.Clone(a), b...))
}

func normalizeKey(key tableKey) tableKey {
	seen := make(set[compId], len(key))
	res := make(tableKey, 0, len(key))
	for _, id := range key {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	slices.Sort(res)
	return res
}

func hashKey(key tableKey) tableId {
	h := fnv.New64a()
	var b [8]byte
	for _, id := range key {
		binary.LittleEndian.PutUint64(b[:], uint64(id))
		h.Write(b[:])
	}
	return tableId(h.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.entityIdLock.Lock()
	defer ecs.entityIdLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter += 1
	return id
}

func (ecs *Ecs) compIdFor(t reflect.Type) compId {
	ecs.compIdLock.Lock()
	defer ecs.compIdLock.Unlock()

	if id, ok := ecs.compIdByType[t]; ok {
		return id
	}

	id := ecs.compIdCounter
	ecs.compIdCounter += 1
	ecs.compIdByType[t] = id
	ecs.compTypeById[id] = t
	return id
}

func (ecs *Ecs) compTypeFor(id compId) reflect.Type {
	if t, ok := ecs.compTypeById[id]; ok {
		return t
	}
	panic("component id not registered")
}
