package syllabus

import (
	"context"
	"creditcounter/internal/components/telemetry"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPage = `<html><body>
<table>
	<tr>
		<td><span class="mcc-hide">Calc I</span></td>
		<td>一般</td>
		<td>必修</td>
		<td>単位</td>
		<td>2</td>
		<td class="c1m">◎</td><td class="c1m"></td><td class="c1m"></td><td class="c1m"></td>
	</tr>
	<tr>
		<td><span class="mcc-hide">Calc II</span></td>
		<td>専門</td>
		<td>選択</td>
		<td>単位</td>
		<td> 3 </td>
		<td class="c1m">◎</td><td class="c1m"> </td><td class="c1m"></td><td class="c1m"></td>
	</tr>
</table>
</body></html>`

func parseTestPage(t *testing.T, src string) Page {
	t.Helper()
	page, err := ParsePage(strings.NewReader(src))
	require.NoError(t, err)
	return page
}

func TestPageSequences(t *testing.T) {
	page := parseTestPage(t, testPage)

	require.Equal(t, []string{"Calc I", "Calc II"}, page.SubjectNames())

	grid := page.GradeGrid()
	require.Equal(t, 2, grid.Blocks())
	require.Equal(t, []string{"◎", "", "", "", "◎", "", "", ""}, grid[0])
	require.Empty(t, grid[1])

	cells := page.Cells()
	require.Contains(t, cells, "3")
	require.Equal(t, "Calc I", cells[0])
}

func TestExtract(t *testing.T) {
	page := parseTestPage(t, testPage)
	rec := &telemetry.Recorder{}

	records, err := NewExtractor(rec).Extract(context.Background(), page, ExtractOptions{
		Department: DefaultDepartments[3],
		Year:       "2025",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "J-2025-0", records[0].ID)
	require.Equal(t, "Calc I", records[0].Name)
	require.Equal(t, 1, records[0].Grade)
	require.Equal(t, CATEGORY_GENERAL, records[0].Category)
	require.Equal(t, REQUIREMENT_REQUIRED, records[0].Requirement)
	require.Equal(t, "2", records[0].CreditUnits)

	require.Equal(t, "J-2025-1", records[1].ID)
	require.Equal(t, 1, records[1].Grade)
	require.Equal(t, CATEGORY_SPECIALIZED, records[1].Category)
	require.Equal(t, REQUIREMENT_ELECTIVE, records[1].Requirement)
	require.Equal(t, "3", records[1].CreditUnits)

	counts := rec.Reports("count")
	require.Len(t, counts, 1)
	require.Equal(t, "syllabus: extractor.records", counts[0].ID)
	require.Equal(t, []any{int64(2)}, counts[0].Params)
	require.Empty(t, rec.Reports("broken"))
}

func TestExtractEmptyPage(t *testing.T) {
	page := parseTestPage(t, "<html><body><p>no subjects</p></body></html>")

	records, err := NewExtractor(telemetry.Discard{}).Extract(context.Background(), page, ExtractOptions{
		Department: DefaultDepartments[0],
		Year:       "2025",
	})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestExtractMismatch(t *testing.T) {
	src := strings.Replace(testPage, "<td>単位</td>\n\t\t<td> 3 </td>", "<td> 3 </td>", 1)
	require.NotEqual(t, testPage, src)
	page := parseTestPage(t, src)
	rec := &telemetry.Recorder{}

	_, err := NewExtractor(rec).Extract(context.Background(), page, ExtractOptions{
		Department: DefaultDepartments[1],
		Year:       "2024",
	})
	require.True(t, errors.Is(err, ErrStructuralMismatch))

	var deptErr *DepartmentError
	require.True(t, errors.As(err, &deptErr))
	require.Equal(t, "E", deptErr.Department.Letter)
	require.Equal(t, "2024", deptErr.Year)

	broken := rec.Reports("broken")
	require.Len(t, broken, 1)
	require.Equal(t, "syllabus: extractor.extract", broken[0].ID)
}

func TestExtractSurplusWarning(t *testing.T) {
	src := strings.Replace(testPage, "</table>", "<tr><td>単位</td><td>1</td></tr></table>", 1)
	page := parseTestPage(t, src)
	rec := &telemetry.Recorder{}

	records, err := NewExtractor(rec).Extract(context.Background(), page, ExtractOptions{
		Department: DefaultDepartments[4],
		Year:       "2025",
	})
	require.NoError(t, err)
	require.Len(t, records, 2)

	warnings := rec.Reports("warning")
	require.Len(t, warnings, 1)
	require.Equal(t, "syllabus: extractor.extract", warnings[0].ID)
}
