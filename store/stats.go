package store

import (
	"math"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
)

// Stats summarizes a flat mapping for overviews.
type Stats struct {
	Keys      int
	Chars     int
	AvgLength int
}

// Measure counts keys and characters of m. AvgLength is the rounded mean
// characters per key, 0 for an empty mapping.
func Measure(m *flatpath.Map) Stats {
	st := Stats{Keys: m.Len()}
	m.Range(func(_ string, v jsonvalue.Value) bool {
		st.Chars += utf8.RuneCountInString(v.Text())
		return true
	})
	if st.Keys > 0 {
		st.AvgLength = int(math.Round(float64(st.Chars) / float64(st.Keys)))
	}
	return st
}

// Translated counts source keys that have a non-blank value in target.
func Translated(source, target *flatpath.Map) int {
	return lo.CountBy(source.Keys(), func(key string) bool {
		v, ok := target.Get(key)
		return ok && !IsBlank(v)
	})
}

// Percent returns part/total as a rounded percentage, 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
