package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/pawelmuchewicz/CSM-System-Obecnosci-2.0-sub000/internal/dto"
)

var ErrExportGenerateFail = errors.New("generating export file failed")

// ExportService renders the attendance report as downloadable files. All
// formats are views over ReportService.Build, so filtering, authorization
// and the aggregation rules live in exactly one place.
type ExportService interface {
	CSV(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*bytes.Buffer, string, error)
	HTML(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*bytes.Buffer, string, error)
	XLSX(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	reports ReportService
	logger  *zap.Logger
}

// NewExportService creates an ExportService instance.
func NewExportService(reports ReportService, logger *zap.Logger) ExportService {
	return &exportService{reports: reports, logger: logger}
}

// Column headers are Polish; the files land on the desks of the school's
// office staff.
var exportHeader = []string{
	"Nazwisko", "Imię", "Grupa", "Status",
	"Obecności", "Nieobecności", "Wypisy", "Zajęcia", "Frekwencja %",
}

func exportRow(it *dto.ReportItem) []string {
	return []string{
		it.LastName,
		it.FirstName,
		it.GroupName,
		it.Status,
		strconv.Itoa(it.Present),
		strconv.Itoa(it.Absent),
		strconv.Itoa(it.Withdrawn),
		strconv.Itoa(it.TotalSessions),
		strconv.Itoa(it.Percent),
	}
}

// ── CSV ──

// utf8BOM makes Excel decode the file as UTF-8; without it Polish
// diacritics come out mangled.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV writes the report as BOM-prefixed UTF-8 with every field quoted.
// encoding/csv cannot force-quote unconditionally, so the writer is
// hand-rolled: quotes doubled, fields joined with commas, rows with \n.
func (s *exportService) CSV(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*bytes.Buffer, string, error) {
	rep, err := s.reports.Build(ctx, caller, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	buf.Write(utf8BOM)
	writeCSVRow(buf, exportHeader)
	for i := range rep.Items {
		writeCSVRow(buf, exportRow(&rep.Items[i]))
	}

	return buf, exportFilename(rep, "csv"), nil
}

func writeCSVRow(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
	buf.WriteByte('\n')
}

// ── HTML ──

// HTML writes the report as a printable HTML page. The endpoint is
// advertised as PDF; the browser's print dialog does the conversion.
func (s *exportService) HTML(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*bytes.Buffer, string, error) {
	rep, err := s.reports.Build(ctx, caller, query)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)
	err = reportTemplate.Execute(buf, reportPage{
		Generated: time.Now().Format("2006-01-02 15:04"),
		DateFrom:  rep.DateFrom,
		DateTo:    rep.DateTo,
		Items:     rep.Items,
		Groups:    rep.Groups,
		Totals:    rep.Totals,
	})
	if err != nil {
		s.logger.Error("rendering report page failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, exportFilename(rep, "html"), nil
}

type reportPage struct {
	Generated string
	DateFrom  string
	DateTo    string
	Items     []dto.ReportItem
	Groups    []dto.GroupStats
	Totals    dto.ReportTotals
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="pl">
<head>
<meta charset="utf-8">
<title>Raport frekwencji</title>
<style>
  body { font-family: Arial, sans-serif; margin: 24px; color: #1a1a1a; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  .meta { color: #555; font-size: 12px; margin-bottom: 16px; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
  th, td { border: 1px solid #bbb; padding: 5px 8px; font-size: 12px; text-align: left; }
  th { background: #eef1f6; }
  td.num, th.num { text-align: right; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Raport frekwencji</h1>
<div class="meta">
  {{if .DateFrom}}Od: {{.DateFrom}} {{end}}{{if .DateTo}}Do: {{.DateTo}} {{end}}
  Wygenerowano: {{.Generated}}
</div>

<table>
<thead>
<tr>
  <th>Nazwisko</th><th>Imię</th><th>Grupa</th><th>Status</th>
  <th class="num">Obecności</th><th class="num">Nieobecności</th>
  <th class="num">Wypisy</th><th class="num">Zajęcia</th><th class="num">Frekwencja</th>
</tr>
</thead>
<tbody>
{{range .Items}}
<tr>
  <td>{{.LastName}}</td><td>{{.FirstName}}</td><td>{{.GroupName}}</td><td>{{.Status}}</td>
  <td class="num">{{.Present}}</td><td class="num">{{.Absent}}</td>
  <td class="num">{{.Withdrawn}}</td><td class="num">{{.TotalSessions}}</td>
  <td class="num">{{.Percent}}%</td>
</tr>
{{end}}
</tbody>
</table>

<h1>Podsumowanie grup</h1>
<table>
<thead>
<tr>
  <th>Grupa</th><th class="num">Zajęcia</th><th class="num">Uczniowie</th><th class="num">Średnia frekwencja</th>
</tr>
</thead>
<tbody>
{{range .Groups}}
<tr>
  <td>{{.GroupName}}</td><td class="num">{{.Sessions}}</td>
  <td class="num">{{.Students}}</td><td class="num">{{.AveragePercent}}%</td>
</tr>
{{end}}
<tr>
  <td><strong>Razem ({{.Totals.Groups}})</strong></td>
  <td class="num"><strong>{{.Totals.Sessions}}</strong></td>
  <td class="num"><strong>{{.Totals.Students}}</strong></td>
  <td class="num"><strong>{{.Totals.AveragePercent}}%</strong></td>
</tr>
</tbody>
</table>
</body>
</html>
`))

// ── XLSX ──

// XLSX writes the report as an Excel workbook with a styled header and a
// group summary block under the item rows.
func (s *exportService) XLSX(ctx context.Context, caller *dto.Caller, query *dto.ReportQuery) (*bytes.Buffer, string, error) {
	rep, err := s.reports.Build(ctx, caller, query)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Frekwencja"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "I", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	title := "Raport frekwencji"
	if rep.DateFrom != "" || rep.DateTo != "" {
		title = fmt.Sprintf("Raport frekwencji %s – %s", orDash(rep.DateFrom), orDash(rep.DateTo))
	}
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", "I1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	for i, head := range exportHeader {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheetName, cellRef, head)
		f.SetCellStyle(sheetName, cellRef, cellRef, headerStyle)
	}

	row := 3
	for i := range rep.Items {
		it := &rep.Items[i]
		values := []interface{}{
			it.LastName, it.FirstName, it.GroupName, it.Status,
			it.Present, it.Absent, it.Withdrawn, it.TotalSessions, it.Percent,
		}
		for col, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cellRef, v)
		}
		row++
	}

	// Group summary below the items.
	row++
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Podsumowanie grup")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), headerStyle)
	row++
	summaryHeader := []string{"Grupa", "Zajęcia", "Uczniowie", "Średnia frekwencja %"}
	for i, head := range summaryHeader {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheetName, cellRef, head)
		f.SetCellStyle(sheetName, cellRef, cellRef, headerStyle)
	}
	row++
	for _, g := range rep.Groups {
		values := []interface{}{g.GroupName, g.Sessions, g.Students, g.AveragePercent}
		for col, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cellRef, v)
		}
		row++
	}
	totals := []interface{}{
		fmt.Sprintf("Razem (%d grup)", rep.Totals.Groups),
		rep.Totals.Sessions, rep.Totals.Students, rep.Totals.AveragePercent,
	}
	for col, v := range totals {
		cellRef, _ := excelize.CoordinatesToCellName(col+1, row)
		f.SetCellValue(sheetName, cellRef, v)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("writing workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, exportFilename(rep, "xlsx"), nil
}

// ── helpers ──

func exportFilename(rep *dto.ReportResponse, ext string) string {
	if rep.DateFrom != "" || rep.DateTo != "" {
		return fmt.Sprintf("raport_frekwencji_%s_%s.%s", orDash(rep.DateFrom), orDash(rep.DateTo), ext)
	}
	return fmt.Sprintf("raport_frekwencji_%s.%s", time.Now().Format("2006-01-02"), ext)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
