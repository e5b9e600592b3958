package mime

// Table is the extension table extended with user-defined overrides. The zero
// value behaves exactly like the package-level Lookup.
type Table struct {
	overrides map[string]Policy
}

// NewTable returns a table consulting the overrides first. Passed map is copied.
func NewTable(overrides map[string]Policy) Table {
	if len(overrides) == 0 {
		return Table{}
	}

	t := Table{overrides: make(map[string]Policy, len(overrides))}
	for ext, policy := range overrides {
		t.overrides[ext] = policy
	}

	return t
}

func (t Table) Lookup(ext string) Policy {
	if policy, found := t.overrides[ext]; found {
		return policy
	}

	return Lookup(ext)
}

func (t Table) ForPath(path string) Policy {
	return t.Lookup(Ext(path))
}
