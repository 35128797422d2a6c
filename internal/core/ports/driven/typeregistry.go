package driven

// TypeRegistry maps collection properties to type signatures for documents
// that do not carry their own _attrs.
type TypeRegistry interface {
	// Lookup returns the signature registered for field of collection.
	Lookup(collection, field string) (string, bool)

	// Fields returns all registered field signatures of collection.
	Fields(collection string) map[string]string
}
