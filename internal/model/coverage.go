package model

import "sort"

// CoverageSnapshot maps a source file to its sorted, de-duplicated covered lines.
// Snapshots are values: helpers never mutate the receiver.
type CoverageSnapshot map[string][]int

// NewCoverageSnapshot copies raw into a normalized snapshot. Files without
// covered lines are dropped.
func NewCoverageSnapshot(raw map[string][]int) CoverageSnapshot {
	snapshot := make(CoverageSnapshot, len(raw))

	for file, lines := range raw {
		normalized := uniqueSorted(lines)
		if len(normalized) == 0 {
			continue
		}

		snapshot[file] = normalized
	}

	return snapshot
}

// Diff returns the lines covered in s but not in base, file by file.
func (s CoverageSnapshot) Diff(base CoverageSnapshot) CoverageSnapshot {
	delta := CoverageSnapshot{}

	for file, lines := range s {
		seen := make(map[int]struct{}, len(base[file]))
		for _, line := range base[file] {
			seen[line] = struct{}{}
		}

		var added []int

		for _, line := range lines {
			if _, ok := seen[line]; !ok {
				added = append(added, line)
			}
		}

		if len(added) > 0 {
			delta[file] = added
		}
	}

	return delta
}

// Without returns a copy of s that omits the given files.
func (s CoverageSnapshot) Without(files ...string) CoverageSnapshot {
	skip := make(map[string]struct{}, len(files))
	for _, file := range files {
		skip[file] = struct{}{}
	}

	out := make(CoverageSnapshot, len(s))

	for file, lines := range s {
		if _, ok := skip[file]; ok {
			continue
		}

		out[file] = append([]int(nil), lines...)
	}

	return out
}

// Equal reports whether both snapshots cover exactly the same lines.
func (s CoverageSnapshot) Equal(other CoverageSnapshot) bool {
	if len(s) != len(other) {
		return false
	}

	for file, lines := range s {
		otherLines, ok := other[file]
		if !ok || len(otherLines) != len(lines) {
			return false
		}

		for i := range lines {
			if lines[i] != otherLines[i] {
				return false
			}
		}
	}

	return true
}

// LineCount returns the number of covered lines across all files.
func (s CoverageSnapshot) LineCount() int {
	total := 0
	for _, lines := range s {
		total += len(lines)
	}

	return total
}

// IsEmpty reports whether no line is covered.
func (s CoverageSnapshot) IsEmpty() bool {
	return s.LineCount() == 0
}

// Files returns the covered files in lexical order.
func (s CoverageSnapshot) Files() []string {
	files := make([]string, 0, len(s))
	for file := range s {
		files = append(files, file)
	}

	sort.Strings(files)

	return files
}

func uniqueSorted(lines []int) []int {
	if len(lines) == 0 {
		return nil
	}

	sorted := append([]int(nil), lines...)
	sort.Ints(sorted)

	out := sorted[:1]

	for _, line := range sorted[1:] {
		if line != out[len(out)-1] {
			out = append(out, line)
		}
	}

	return out
}
