package syllabus

const (
	// MaxGrade is the number of grade columns on the page.
	MaxGrade = 5
	// BlockSize is the number of marker cells each subject row has in one grade column.
	BlockSize = 4
)

// GradeColumnGrid holds the marker cells of every grade column, column[0] is grade 1.
type GradeColumnGrid [MaxGrade][]string

// Blocks is the number of subject rows in the grid. column[0] is taken as representative.
func (g GradeColumnGrid) Blocks() int {
	return len(g[0]) / BlockSize
}

// blockIsBlank reports whether every cell of block i in the given column is empty.
// Cells past the end of a short column count as empty.
func (g GradeColumnGrid) blockIsBlank(column, block int) bool {
	cells := g[column]
	for i := block * BlockSize; i < (block+1)*BlockSize; i++ {
		if i < len(cells) && cells[i] != "" {
			return false
		}
	}
	return true
}

type GroupOptions struct {
	// ClampOverflow keeps the grade at MaxGrade instead of failing when trailing blank
	// blocks would push it further.
	ClampOverflow bool
}

// GroupGrades assigns a grade to every block of the grid.
//
// The current grade starts at 1. A block with any marker in the current grade's column
// belongs to that grade, a fully blank block moves the current grade up by one and is
// recorded with the new grade.
func GroupGrades(grid GradeColumnGrid, opts GroupOptions) ([]int, error) {
	blocks := grid.Blocks()
	grades := make([]int, 0, blocks)

	current := 1
	for block := 0; block < blocks; block++ {
		if grid.blockIsBlank(current-1, block) {
			current++
			if current > MaxGrade {
				if !opts.ClampOverflow {
					return grades, &GradeOverflowError{Block: block, Grade: current}
				}
				current = MaxGrade
			}
		}
		grades = append(grades, current)
	}

	return grades, nil
}
