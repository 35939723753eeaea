package bootstrap

// SectionTracker folds contiguous groups with the same type into one
// displayed section.
type SectionTracker struct {
	current string
	started bool
}

// Enter records that a step of groupType is about to be reported and
// returns true when this starts a new section.
func (t *SectionTracker) Enter(groupType string) bool {
	if t.started && t.current == groupType {
		return false
	}
	t.current = groupType
	t.started = true
	return true
}

// Current returns the active section label.
func (t *SectionTracker) Current() string {
	return t.current
}
