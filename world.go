package emberforge

// World, Chunk and Entities are the narrow interfaces the tick loop
// consults each pass. Their implementation — terrain, persistence,
// spatial indexing — is entirely an embedding application's concern;
// internal/simworld ships a minimal reference implementation for tests and
// cmd/demo.
type World interface {
	// ID identifies the world among Config.Worlds' returned slice.
	ID() int32
	// Chunks returns every chunk currently loaded in this world.
	Chunks() []Chunk
	// UpdateSpatialIndex rebuilds whatever per-world index tracks entity
	// positions, using the tick's live entity set.
	UpdateSpatialIndex(Entities)
	// UpdateMeta applies end-of-tick world-level bookkeeping (time of day,
	// weather, and the like).
	UpdateMeta()
}

// Chunk is one loaded chunk of a World.
type Chunk interface {
	// CreatedTick returns the tick on which this chunk was first loaded.
	CreatedTick() int64
	// ApplyModifications flushes any block changes queued against this
	// chunk since the last call.
	ApplyModifications()
}

// Entities is the tick loop's single entry point into whatever entity
// storage the embedding application keeps; emberforge never iterates
// entities directly.
type Entities interface {
	// Update advances every entity by one tick.
	Update()
}
