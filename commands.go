package atrium

// Commands is the handle systems mutate the world through. Structural
// changes (spawns, despawns, component moves) are buffered and applied at
// the next flush - after the current stage - so iteration never observes a
// half-applied change. Resource installs and state changes go through the
// app directly.
type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(next State) *Commands {
	cmd.app.changeState(next)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// AddEntity reserves the id immediately so the caller can wire references
// (parents, lookups) before the spawn is flushed.
func (cmd *Commands) AddEntity(components ...any) EntityId {
	entity := cmd.app.ecs.nextEntityId()
	cmd.app.pendingSpawns = append(cmd.app.pendingSpawns, pendingSpawn{
		entity:     entity,
		components: components,
	})
	return entity
}

func (cmd *Commands) AddComponents(entity EntityId, components ...any) {
	cmd.app.pendingAttachments = append(cmd.app.pendingAttachments, pendingComponents{
		entity:     entity,
		components: components,
	})
}

func (cmd *Commands) RemoveComponents(entity EntityId, components ...any) {
	cmd.app.pendingDetachments = append(cmd.app.pendingDetachments, pendingComponents{
		entity:     entity,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entity EntityId) {
	cmd.app.pendingDespawns = append(cmd.app.pendingDespawns, entity)
}

// GetAllComponents returns copies of every component on the entity, or nil
// when the entity does not exist (despawned parents resolve to nothing).
func (cmd *Commands) GetAllComponents(entity EntityId) []any {
	ecs := cmd.app.ecs
	tid, ok := ecs.entityTable[entity]
	if !ok {
		return nil
	}
	tbl := ecs.tables[tid]
	s := tbl.slots[entity]

	var res []any
	for _, column := range tbl.columns {
		res = append(res, columnGet(column, int(s)).Interface())
	}
	return res
}
