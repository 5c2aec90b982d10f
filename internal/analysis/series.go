package analysis

import "github.com/san-kum/dropsim/internal/storage"

// Series groups diagnostics rows by phase, in order of first appearance.
func Series(rows []storage.Diagnostic) []*PhaseSeries {
	var out []*PhaseSeries
	byName := make(map[string]*PhaseSeries)
	for _, d := range rows {
		s, ok := byName[d.Phase]
		if !ok {
			s = &PhaseSeries{Phase: d.Phase}
			byName[d.Phase] = s
			out = append(out, s)
		}
		s.Append(d.Time, d.Mass, d.Kinetic, d.Centroid.X, d.Centroid.Y, d.ContactAngle)
	}
	return out
}
