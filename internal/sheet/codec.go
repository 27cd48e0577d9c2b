package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// NoAddress replaces a blank address cell on import.
const NoAddress = "주소 정보 없음"

const sheetName = "걷기경로"

// ErrFormat marks a structural problem: no data rows or a missing required
// column. Content-level problems carry a *RowError instead.
var ErrFormat = errors.New("올바른 엑셀 파일 형식이 아닙니다")

// RowError reports an invalid cell with the 1-based data-row index.
type RowError struct {
	Row    int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%d번째 행: %s", e.Row, e.Reason)
}

var (
	requiredColumns = []string{"순서", "위도", "경도", "주소"}
	allColumns      = []string{"순서", "위도", "경도", "주소", "구간거리_km", "구간시간", "총누적거리_km", "총누적시간"}
	columnWidths    = []float64{8, 12, 12, 30, 15, 15, 15, 15}
)

// Marker is one exported/imported route point. Order is only a sort key, so
// fractional values are accepted.
type Marker struct {
	Order   float64
	Lat     float64
	Lng     float64
	Address string
}

// Segment pairs with the marker it leads to: Segments[i] is the leg from
// marker i to marker i+1.
type Segment struct {
	DistanceKm  float64
	DurationMin float64
}

// ImportResult is a fully validated spreadsheet, markers sorted by order.
// Totals carry the last row's cumulative columns verbatim (empty when the
// file has none) so the caller can display them without recomputing.
type ImportResult struct {
	Markers       []Marker
	TotalDistance string
	TotalTime     string
}

// FileName embeds the export date.
func FileName(now time.Time) string {
	return "걷기경로_" + now.Format("2006-01-02") + ".xlsx"
}

// FormatMinutes renders a duration in minutes as "H시간 M분", dropping the
// hour part when zero.
func FormatMinutes(minutes float64) string {
	hours := int(minutes) / 60
	remaining := int(math.Round(math.Mod(minutes, 60)))
	if hours > 0 {
		return fmt.Sprintf("%d시간 %d분", hours, remaining)
	}
	return fmt.Sprintf("%d분", remaining)
}

// Export renders markers and their legs as a single-sheet workbook. Segment
// and cumulative cells are "-" on the first row.
func Export(markers []Marker, segments []Segment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	for i, width := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, err
		}
	}

	header := make([]any, len(allColumns))
	for i, name := range allColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	var cumulativeKm, cumulativeMin float64
	for i, m := range markers {
		segmentKm, segmentMin := "-", "-"
		totalKm, totalMin := "-", "-"
		if i > 0 {
			var seg Segment
			if i-1 < len(segments) {
				seg = segments[i-1]
			}
			cumulativeKm += seg.DistanceKm
			cumulativeMin += seg.DurationMin
			segmentKm = strconv.FormatFloat(seg.DistanceKm, 'f', 2, 64)
			segmentMin = FormatMinutes(seg.DurationMin)
			totalKm = strconv.FormatFloat(cumulativeKm, 'f', 2, 64)
			totalMin = FormatMinutes(cumulativeMin)
		}

		row := []any{i + 1, m.Lat, m.Lng, m.Address, segmentKm, segmentMin, totalKm, totalMin}
		cell := "A" + strconv.Itoa(i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Import parses and validates the first sheet of a workbook. The whole file
// is validated before anything is returned; callers may safely replace state
// only on a nil error.
func Import(data []byte) (*ImportResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: 데이터가 없습니다", ErrFormat)
	}

	colIndex := map[string]int{}
	for i, name := range rows[0] {
		colIndex[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := colIndex[required]; !ok {
			return nil, fmt.Errorf("%w: %s 컬럼이 없습니다", ErrFormat, required)
		}
	}

	dataRows := rows[1:]
	markers := make([]Marker, 0, len(dataRows))
	for i, row := range dataRows {
		order, err := strconv.ParseFloat(strings.TrimSpace(cellAt(row, colIndex["순서"])), 64)
		if err != nil {
			return nil, &RowError{Row: i + 1, Reason: "데이터 형식이 올바르지 않습니다"}
		}
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(cellAt(row, colIndex["위도"])), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(cellAt(row, colIndex["경도"])), 64)
		if latErr != nil || lngErr != nil {
			return nil, &RowError{Row: i + 1, Reason: "데이터 형식이 올바르지 않습니다"}
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, &RowError{Row: i + 1, Reason: "좌표가 유효하지 않습니다"}
		}

		address := strings.TrimSpace(cellAt(row, colIndex["주소"]))
		if address == "" {
			address = NoAddress
		}

		markers = append(markers, Marker{Order: order, Lat: lat, Lng: lng, Address: address})
	}

	result := &ImportResult{Markers: markers}
	lastRow := dataRows[len(dataRows)-1]
	if idx, ok := colIndex["총누적거리_km"]; ok {
		if v := strings.TrimSpace(cellAt(lastRow, idx)); v != "" && v != "-" {
			result.TotalDistance = v
		}
	}
	result.TotalTime = totalTimeFromRow(lastRow, colIndex)

	sort.SliceStable(result.Markers, func(a, b int) bool {
		return result.Markers[a].Order < result.Markers[b].Order
	})
	return result, nil
}

// totalTimeFromRow reads 총누적시간, falling back to the 총누적시간_분 variant
// where the value is raw minutes rather than a formatted label.
func totalTimeFromRow(row []string, colIndex map[string]int) string {
	if idx, ok := colIndex["총누적시간"]; ok {
		if v := strings.TrimSpace(cellAt(row, idx)); v != "" && v != "-" {
			return v
		}
	}
	if idx, ok := colIndex["총누적시간_분"]; ok {
		v := strings.TrimSpace(cellAt(row, idx))
		if v == "" || v == "-" {
			return ""
		}
		if minutes, err := strconv.ParseFloat(v, 64); err == nil {
			return FormatMinutes(minutes)
		}
		return v
	}
	return ""
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
