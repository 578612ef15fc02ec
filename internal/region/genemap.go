package region

// GeneMap records the genes associated with one genomic position.
// The mapping route follows gene symbol -> gene ID -> genic region.
type GeneMap map[string]map[string]GenicRegion

// Add records one gene association.
func (g GeneMap) Add(symbol, id string, r GenicRegion) {
	ids, ok := g[symbol]
	if !ok {
		ids = make(map[string]GenicRegion)
		g[symbol] = ids
	}
	ids[id] = r
}

// Equal reports whether two gene maps record identical associations.
func (g GeneMap) Equal(other GeneMap) bool {
	if len(g) != len(other) {
		return false
	}
	for symbol, ids := range g {
		otherIDs, ok := other[symbol]
		if !ok || len(ids) != len(otherIDs) {
			return false
		}
		for id, r := range ids {
			if otherR, ok := otherIDs[id]; !ok || otherR != r {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy. Peaks never share gene maps with their
// source variant or with peaks derived from them.
func (g GeneMap) Clone() GeneMap {
	if g == nil {
		return nil
	}
	out := make(GeneMap, len(g))
	for symbol, ids := range g {
		outIDs := make(map[string]GenicRegion, len(ids))
		for id, r := range ids {
			outIDs[id] = r
		}
		out[symbol] = outIDs
	}
	return out
}
