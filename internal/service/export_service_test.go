package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"meetcrm/internal/model"
)

type fakeMeetSource struct {
	meets []model.Meet
}

func (f *fakeMeetSource) ListCompletedRange(ctx context.Context, start, end time.Time) ([]model.Meet, error) {
	return f.meets, nil
}

type fakeLectureSource struct {
	lectures []model.Lecture
}

func (f *fakeLectureSource) ListRange(ctx context.Context, start, end time.Time) ([]model.Lecture, error) {
	return f.lectures, nil
}

func TestMeetsCSVShape(t *testing.T) {
	name := "Конференция"
	customer := "Петров П.П."
	start := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	src := &fakeMeetSource{meets: []model.Meet{{
		EventName:    &name,
		CustomerName: &customer,
		Start:        &start,
	}}}
	svc := NewExportService(src, &fakeLectureSource{})

	var buf bytes.Buffer
	if err := svc.MeetsCSV(context.Background(), start, start, &buf); err != nil {
		t.Fatalf("MeetsCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want 2", len(records))
	}
	if records[0][0] != "Название мероприятия" {
		t.Errorf("header = %q", records[0][0])
	}
	if len(records[1]) != len(records[0]) {
		t.Errorf("data row has %d cells, header has %d", len(records[1]), len(records[0]))
	}
	if records[1][0] != name || records[1][1] != customer {
		t.Errorf("data row = %v", records[1])
	}
	// Start is noon UTC, so the MSK display time is 15:00.
	if records[1][11] != "15:00" {
		t.Errorf("start cell = %q, want 15:00", records[1][11])
	}
}

func TestLecturesCSVShape(t *testing.T) {
	group := "ИУ5-31"
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	src := &fakeLectureSource{lectures: []model.Lecture{{
		Group: &group,
		Date:  date,
	}}}
	svc := NewExportService(&fakeMeetSource{}, src)

	var buf bytes.Buffer
	if err := svc.LecturesCSV(context.Background(), date, date, &buf); err != nil {
		t.Fatalf("LecturesCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("rows = %d, want 2", len(records))
	}
	if records[1][0] != group {
		t.Errorf("group cell = %q", records[1][0])
	}
	if records[1][8] != "01.09.2026" {
		t.Errorf("date cell = %q", records[1][8])
	}
}

func TestMeetsXLSXProducesWorkbook(t *testing.T) {
	svc := NewExportService(&fakeMeetSource{}, &fakeLectureSource{})

	r, err := svc.MeetsXLSX(context.Background(), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("MeetsXLSX: %v", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	// XLSX files are zip archives.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Errorf("output does not look like an xlsx archive")
	}
}
