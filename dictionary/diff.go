package dictionary

// DiffResult represents the difference between two dictionary versions.
type DiffResult struct {
	// Added contains keys that are new (not in the previous version).
	Added []string

	// Removed contains keys that were removed (not in the new version).
	Removed []string

	// Unchanged contains keys present in both versions with the same value.
	Unchanged []string

	// Changed contains keys present in both versions whose value differs.
	Changed []ChangedEntry
}

// ChangedEntry represents a key whose replacement was modified.
type ChangedEntry struct {
	Key string
	Old string
	New string
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Changed:   len(d.Changed),
	}
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Changed   int
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0
}

// Diff compares two dictionaries. All slices are in key order.
func Diff(oldDict, newDict *Dictionary) *DiffResult {
	result := &DiffResult{}

	for _, k := range oldDict.Keys() {
		newVal, exists := newDict.Lookup(k)
		if !exists {
			result.Removed = append(result.Removed, k)
			continue
		}
		oldVal := oldDict.entries[k]
		if oldVal == newVal {
			result.Unchanged = append(result.Unchanged, k)
		} else {
			result.Changed = append(result.Changed, ChangedEntry{Key: k, Old: oldVal, New: newVal})
		}
	}

	for _, k := range newDict.Keys() {
		if _, exists := oldDict.Lookup(k); !exists {
			result.Added = append(result.Added, k)
		}
	}

	return result
}
