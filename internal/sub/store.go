package sub

// Store is the layered variable store owned by one resolution run. Lookup
// falls through three tiers: raw values from the batch currently being
// loaded, values resolved earlier in the run, and externally supplied
// read-only variables.
type Store struct {
	batch    map[string]string
	resolved map[string]string
	external map[string]string
}

// NewStore creates a Store. The external map is read-only and may be nil.
func NewStore(external map[string]string) *Store {
	return &Store{
		batch:    make(map[string]string),
		resolved: make(map[string]string),
		external: external,
	}
}

// LookupVar implements Lookup with batch -> resolved -> external fallback.
func (s *Store) LookupVar(name string) (string, bool) {
	if v, ok := s.batch[name]; ok {
		return v, true
	}
	if v, ok := s.resolved[name]; ok {
		return v, true
	}
	if v, ok := s.external[name]; ok {
		return v, true
	}
	return "", false
}

// SetBatch records a raw in-flight value for the batch tier, so that keys of
// one resource can reference each other before either is committed.
func (s *Store) SetBatch(key, raw string) {
	s.batch[key] = raw
}

// ClearBatch drops the batch tier once its resource has been merged.
func (s *Store) ClearBatch() {
	clear(s.batch)
}

// Put records a resolved value. Later puts for the same key overwrite
// earlier ones, so the latest writer wins for lookups.
func (s *Store) Put(key, value string) {
	s.resolved[key] = value
}
