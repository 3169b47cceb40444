// Package ranges holds the inclusive-interval bookkeeping used to report
// migration progress: merged sections of completed work and the gaps left
// between them.
package ranges

import "sort"

// Section defines an interval of blocks with inclusive boundaries [StartIdx, EndIdx]
type Section struct {
	StartIdx uint64 `json:"start"`
	EndIdx   uint64 `json:"end"`
}

type Sections = []Section

// Merge normalizes, sorts and coalesces adjacent or overlapping sections.
func Merge(sections Sections) Sections {
	var merged Sections

	if len(sections) > 1 {
		sort.Slice(sections, func(i, j int) bool {
			return sections[i].StartIdx < sections[j].StartIdx
		})
	}

	for _, section := range sections {
		if section.StartIdx > section.EndIdx {
			section.StartIdx, section.EndIdx = section.EndIdx, section.StartIdx
		}
		last := len(merged) - 1
		if last < 0 {
			merged = append(merged, section)
			continue
		}

		if section.StartIdx == merged[last].EndIdx+1 {
			merged[last].EndIdx = section.EndIdx
			continue
		}

		if section.StartIdx > merged[last].EndIdx {
			merged = append(merged, section)
			continue
		}

		if section.EndIdx > merged[last].EndIdx {
			merged[last].EndIdx = section.EndIdx
		}
	}

	return merged
}

// Gaps returns the sections missing between the first and last covered index.
func Gaps(sections Sections) Sections {
	sections = Merge(sections)
	if len(sections) < 2 {
		return nil
	}

	var missing Sections
	for i := 1; i < len(sections); i++ {
		low := sections[i-1].EndIdx + 1
		high := sections[i].StartIdx - 1
		if low <= high {
			missing = append(missing, Section{StartIdx: low, EndIdx: high})
		}
	}

	return missing
}

// Covered returns the total number of indexes the sections span.
func Covered(sections Sections) uint64 {
	var total uint64
	for _, s := range Merge(sections) {
		total += s.EndIdx - s.StartIdx + 1
	}
	return total
}
