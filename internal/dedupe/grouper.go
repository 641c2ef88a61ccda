package dedupe

// Grouper partitions hashed records by digest. Insertion order is preserved
// both across groups (order of first appearance of each digest) and within a
// group (member order), so the final grouping depends only on the input
// sequence, never on hash completion order.
type Grouper struct {
	byDigest map[Digest]*DuplicateGroup
	order    []Digest
}

func NewGrouper() *Grouper {
	return &Grouper{byDigest: make(map[Digest]*DuplicateGroup)}
}

// Add appends a hashed record to its digest group. Records must be added in
// enumeration order.
func (g *Grouper) Add(rec FileRecord) {
	grp, ok := g.byDigest[rec.Digest]
	if !ok {
		grp = &DuplicateGroup{Digest: rec.Digest}
		g.byDigest[rec.Digest] = grp
		g.order = append(g.order, rec.Digest)
	}
	grp.Files = append(grp.Files, rec)
}

// Duplicates returns every group with two or more members, in order of first
// appearance.
func (g *Grouper) Duplicates() []DuplicateGroup {
	var out []DuplicateGroup
	for _, d := range g.order {
		grp := g.byDigest[d]
		if len(grp.Files) >= 2 {
			out = append(out, *grp)
		}
	}
	return out
}
