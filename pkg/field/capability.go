package field

// SchemaMap is the flattened dotted-path view of a field tree. Entries are
// shared by reference so globally declared blocks appear once and every
// synthetic path pointing at them reuses the same definition.
type SchemaMap map[string]*Field

// SchemaMapContext is handed to opaque kinds when a path map is built. Path
// is the dotted path of the field being flattened; Map is the shared map the
// capability appends its own entries to.
type SchemaMapContext struct {
	Path string
	Map  SchemaMap
}

// SchemaMapGenerator is the contract opaque plug-in kinds (rich text) expose
// so the path-map builder can delegate instead of recursing structurally.
// Its absence on a kind that requires it is a configuration error.
type SchemaMapGenerator interface {
	GenerateSchemaMap(ctx SchemaMapContext) error
}
