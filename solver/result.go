// Package solver - projection of the indexed state back to string ids.
package solver

// projectSchedule converts the dense schedule to the human-readable form:
// session -> group -> ordered person ids, reconstructing ids from the
// compiled reverse tables.
func projectSchedule(st *state) [][][]string {
	cp := st.cp
	out := make([][][]string, cp.S)
	for s := 0; s < cp.S; s++ {
		out[s] = make([][]string, cp.G)
		for g := 0; g < cp.G; g++ {
			out[s][g] = idNames(cp.PersonIDs, st.schedule[s][g])
		}
	}

	return out
}
