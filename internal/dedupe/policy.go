package dedupe

import "fmt"

// SurvivorPolicy names the rule that picks the one file kept out of a
// duplicate group. The rule is explicit and configured, never an accident of
// iteration order.
type SurvivorPolicy string

const (
	// PolicyFirstSeen keeps the member encountered earliest during
	// enumeration. This is the default.
	PolicyFirstSeen SurvivorPolicy = "first_seen"

	// PolicyLexicalPath keeps the member with the lexically smallest path.
	PolicyLexicalPath SurvivorPolicy = "lexical_path"

	// PolicyOldestModTime keeps the member with the earliest modification
	// time, ties broken by lexically smallest path.
	PolicyOldestModTime SurvivorPolicy = "oldest_mtime"
)

// ParsePolicy validates a policy name from config or flags.
func ParsePolicy(name string) (SurvivorPolicy, error) {
	switch SurvivorPolicy(name) {
	case PolicyFirstSeen, PolicyLexicalPath, PolicyOldestModTime:
		return SurvivorPolicy(name), nil
	case "":
		return PolicyFirstSeen, nil
	default:
		return "", fmt.Errorf("unknown survivor policy %q", name)
	}
}

// Pick returns the index of the survivor within files. files must be
// non-empty and in enumeration order; every policy is deterministic for a
// fixed input sequence.
func (p SurvivorPolicy) Pick(files []FileRecord) int {
	keep := 0
	switch p {
	case PolicyLexicalPath:
		for i := 1; i < len(files); i++ {
			if files[i].Path < files[keep].Path {
				keep = i
			}
		}
	case PolicyOldestModTime:
		for i := 1; i < len(files); i++ {
			fi, fk := files[i], files[keep]
			if fi.ModTime.Before(fk.ModTime) ||
				(fi.ModTime.Equal(fk.ModTime) && fi.Path < fk.Path) {
				keep = i
			}
		}
	default:
		// first_seen: enumeration order position 0
	}
	return keep
}
