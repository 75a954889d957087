package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"meetcrm/internal/model"
	"meetcrm/internal/util"
)

// MeetSource and LectureSource are the read slices of the repositories
// the export service needs.
type MeetSource interface {
	ListCompletedRange(ctx context.Context, start, end time.Time) ([]model.Meet, error)
}

type LectureSource interface {
	ListRange(ctx context.Context, start, end time.Time) ([]model.Lecture, error)
}

var meetHeaders = []string{
	"Название мероприятия", "ФИО заказчика", "Почта", "Телефон",
	"Место проведения", "Платформа", "Оборудование", "Ссылка",
	"Короткая ссылка", "Ответственный", "Дата", "Начало", "Конец",
}

var lectureHeaders = []string{
	"Группа", "Лектор", "Платформа", "Подразделение", "Место проведения",
	"Ссылка", "Короткая ссылка", "Ответственный", "Дата", "Начало", "Конец",
}

type ExportService struct {
	meets    MeetSource
	lectures LectureSource
}

func NewExportService(meets MeetSource, lectures LectureSource) *ExportService {
	return &ExportService{meets: meets, lectures: lectures}
}

// MeetsCSV writes completed meets of the range as CSV.
func (s *ExportService) MeetsCSV(ctx context.Context, start, end time.Time, w io.Writer) error {
	meets, err := s.meets.ListCompletedRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("list completed meets: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(meetHeaders); err != nil {
		return err
	}
	for i := range meets {
		if err := cw.Write(meetRow(&meets[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LecturesCSV writes the lectures of the range as CSV.
func (s *ExportService) LecturesCSV(ctx context.Context, start, end time.Time, w io.Writer) error {
	lectures, err := s.lectures.ListRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("list lectures: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(lectureHeaders); err != nil {
		return err
	}
	for i := range lectures {
		if err := cw.Write(lectureRow(&lectures[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MeetsXLSX renders completed meets of the range as an xlsx workbook.
func (s *ExportService) MeetsXLSX(ctx context.Context, start, end time.Time) (io.Reader, error) {
	meets, err := s.meets.ListCompletedRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list completed meets: %w", err)
	}

	rows := make([][]string, 0, len(meets))
	for i := range meets {
		rows = append(rows, meetRow(&meets[i]))
	}
	return buildWorkbook("Мероприятия", meetHeaders, rows)
}

// LecturesXLSX renders the lectures of the range as an xlsx workbook.
func (s *ExportService) LecturesXLSX(ctx context.Context, start, end time.Time) (io.Reader, error) {
	lectures, err := s.lectures.ListRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}

	rows := make([][]string, 0, len(lectures))
	for i := range lectures {
		rows = append(rows, lectureRow(&lectures[i]))
	}
	return buildWorkbook("Лекции", lectureHeaders, rows)
}

func meetRow(m *model.Meet) []string {
	return []string{
		util.StringOrEmpty(m.EventName),
		util.StringOrEmpty(m.CustomerName),
		util.StringOrEmpty(m.Email),
		util.StringOrEmpty(m.Phone),
		util.StringOrEmpty(m.Location),
		util.StringOrEmpty(m.Platform),
		util.StringOrEmpty(m.Devices),
		util.StringOrEmpty(m.URL),
		util.StringOrEmpty(m.ShortURL),
		util.StringOrEmpty(m.AdminName),
		dateCell(m.Start),
		timeCell(m.Start),
		timeCell(m.End),
	}
}

func lectureRow(l *model.Lecture) []string {
	return []string{
		util.StringOrEmpty(l.Group),
		util.StringOrEmpty(l.Lector),
		util.StringOrEmpty(l.Platform),
		util.StringOrEmpty(l.Unit),
		util.StringOrEmpty(l.Location),
		util.StringOrEmpty(l.URL),
		util.StringOrEmpty(l.ShortURL),
		util.StringOrEmpty(l.AdminName),
		util.FormatDate(l.Date),
		timeCell(l.Start),
		timeCell(l.End),
	}
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return util.FormatDate(t.In(util.Moscow))
}

func timeCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return util.FormatTimeOfDay(*t)
}

func buildWorkbook(sheet string, headers []string, rows [][]string) (io.Reader, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, err
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, styleID); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
