package excel

import (
	"context"
	"path/filepath"
	"testing"

	"carevisits/domain/core"
	"carevisits/domain/survey"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, header []string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue("Sheet1", cell, name); err != nil {
			t.Fatal(err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "survey.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func tidyHeader() []string {
	fields := survey.AllFields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = string(f)
	}
	return header
}

func TestLoadObservations(t *testing.T) {
	path := writeWorkbook(t, tidyHeader(), [][]any{
		{3, "Yes", "No", "No", "No", "No", "Yes", "No", "No", "No", "Yes", "No", "No"},
		{"NA", "yes", "1", "No", "No", "No", "No", "No", "No", "No", "No", "No", "No"},
		{0, "", "n", "No", "No", "No", "No", "No", "No", "No", "No", "No", "No"},
	})

	table, err := NewSurveyReader(path).LoadObservations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("loaded %d rows, want 3", len(table))
	}

	first := table[0]
	if first.Visits == nil || *first.Visits != 3 {
		t.Errorf("row 0 visits = %v, want 3", first.Visits)
	}
	if first.Depression != survey.Yes || first.Chronic != survey.No {
		t.Errorf("row 0 factors = %s/%s, want Yes/No", first.Depression, first.Chronic)
	}
	if first.Asthma != survey.Yes || first.Arthritis != survey.Yes {
		t.Error("row 0 condition fields not decoded")
	}

	second := table[1]
	if second.Visits != nil {
		t.Errorf("row 1 visits = %v, want missing", *second.Visits)
	}
	// lowercase and numeric spellings decode like canonical ones
	if second.Depression != survey.Yes || second.Chronic != survey.Yes {
		t.Errorf("row 1 factors = %s/%s, want Yes/Yes", second.Depression, second.Chronic)
	}

	third := table[2]
	if third.Visits == nil || *third.Visits != 0 {
		t.Errorf("row 2 visits = %v, want 0", third.Visits)
	}
	if third.Depression.Present() {
		t.Errorf("row 2 depression = %s, want missing", third.Depression)
	}
	if third.Chronic != survey.No {
		t.Errorf("row 2 chronic = %s, want No", third.Chronic)
	}
}

func TestLoadObservationsMissingColumn(t *testing.T) {
	header := tidyHeader()
	header = header[:len(header)-1] // drop kidney_disease

	path := writeWorkbook(t, header, nil)
	_, err := NewSurveyReader(path).LoadObservations(context.Background())
	if !core.IsMissingFieldError(err) {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestLoadObservationsMissingFile(t *testing.T) {
	_, err := NewSurveyReader(filepath.Join(t.TempDir(), "absent.xlsx")).LoadObservations(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
