package domain

// DesiredCount is the create-count side of the lookup-then-create
// contract: a lookup that found anything suppresses creation entirely,
// otherwise the full desired number is created. It never returns a
// partial count.
func DesiredCount(found, want int) int {
	if found > 0 {
		return 0
	}
	return want
}

// EffectiveID resolves which identity downstream references consume.
// A pre-existing resource always wins; the created one only counts when
// the lookup came back empty.
func EffectiveID(existing, created string) string {
	if existing != "" {
		return existing
	}
	return created
}

// EffectiveIDs is EffectiveID for resources that come in sets: any
// non-empty existing set shadows the created set wholesale.
func EffectiveIDs(existing, created []string) []string {
	if len(existing) > 0 {
		return existing
	}
	return created
}
