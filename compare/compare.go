// Package compare classifies the keys of a target language file against
// its source, the way msgmerge classifies PO entries against a template.
package compare

import (
	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
	"github.com/jacktools/transbuilder/store"
)

// Report is the result of comparing a target mapping with its source.
// All key lists are in source order except Obsolete, which follows the
// target.
type Report struct {
	// Translated keys have a non-blank value in the target.
	Translated []string
	// Missing keys are absent from the target.
	Missing []string
	// Blank keys are present but blank (see store.IsBlank).
	Blank []string
	// Pending is Missing and Blank interleaved in source order.
	Pending []string
	// Obsolete keys exist in the target but no longer in the source.
	Obsolete []string
	// Total is the number of source keys.
	Total int
}

// Compare builds a Report for target against source.
func Compare(source, target *flatpath.Map) Report {
	r := Report{Total: source.Len()}

	source.Range(func(key string, _ jsonvalue.Value) bool {
		v, ok := target.Get(key)
		switch {
		case !ok:
			r.Missing = append(r.Missing, key)
			r.Pending = append(r.Pending, key)
		case store.IsBlank(v):
			r.Blank = append(r.Blank, key)
			r.Pending = append(r.Pending, key)
		default:
			r.Translated = append(r.Translated, key)
		}
		return true
	})

	target.Range(func(key string, _ jsonvalue.Value) bool {
		if _, ok := source.Get(key); !ok {
			r.Obsolete = append(r.Obsolete, key)
		}
		return true
	})

	return r
}

// Percent returns the translated share of the source keys.
func (r Report) Percent() int {
	return store.Percent(len(r.Translated), r.Total)
}

// Complete reports whether nothing is pending.
func (r Report) Complete() bool {
	return len(r.Pending) == 0
}
