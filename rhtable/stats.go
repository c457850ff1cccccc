package rhtable

// Stats summarises the probe-length distribution of a table.
type Stats struct {
	Size     int
	Capacity int
	Load     float64 // Size / Capacity
	MaxPSL   int     // longest displacement of any entry
	MeanPSL  float64 // average displacement; 0 for an empty table
}

// Stats scans every slot once. Cost is O(capacity).
func (t *Table[K, V]) Stats() Stats {
	st := Stats{Size: t.size, Capacity: len(t.slots)}
	if st.Capacity > 0 {
		st.Load = float64(t.size) / float64(st.Capacity)
	}
	total := 0
	for i := range t.slots {
		if s := &t.slots[i]; s.used {
			total += int(s.psl)
			if int(s.psl) > st.MaxPSL {
				st.MaxPSL = int(s.psl)
			}
		}
	}
	if t.size > 0 {
		st.MeanPSL = float64(total) / float64(t.size)
	}
	return st
}
