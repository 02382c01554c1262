package core

import (
	"sort"
	"strings"
)

// OptionList is the ordered list of choices for one filter control. It always
// starts with AllOption, followed by distinct display values sorted
// case-insensitively.
type OptionList []string

// Contains reports whether value is a listed option, compared normalized.
func (o OptionList) Contains(value string) bool {
	key := Normalize(value)
	for _, opt := range o {
		if Normalize(opt) == key {
			return true
		}
	}
	return false
}

// EnumerateOptions derives the option list of a filterable column.
//
// Values are deduplicated by their normalized form; the display text kept
// for each key is the trimmed value of its first occurrence in row order.
// Values that normalize to "" are skipped, as are values equal to the
// AllOption sentinel, which a selection could not tell apart from "no
// constraint". An absent column yields only AllOption.
func EnumerateOptions(ds *Dataset, col Column) OptionList {
	idx, ok := ds.colIndex[string(col)]
	if !ok {
		return OptionList{AllOption}
	}

	seen := map[string]bool{Normalize(AllOption): true}
	var display []string
	for _, row := range ds.rows {
		value := strings.TrimSpace(row[idx])
		key := strings.ToLower(value)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		display = append(display, value)
	}

	sort.SliceStable(display, func(i, j int) bool {
		return strings.ToLower(display[i]) < strings.ToLower(display[j])
	})

	opts := make(OptionList, 0, len(display)+1)
	opts = append(opts, AllOption)
	return append(opts, display...)
}

// Options returns the precomputed option list of a filterable column.
func (d *Dataset) Options(col Column) OptionList {
	if opts, ok := d.options[col]; ok {
		return append(OptionList(nil), opts...)
	}
	return OptionList{AllOption}
}

// AllOptions returns the option lists of every filterable column.
func (d *Dataset) AllOptions() map[Column]OptionList {
	all := make(map[Column]OptionList, len(FilterColumns))
	for _, col := range FilterColumns {
		all[col] = d.Options(col)
	}
	return all
}
