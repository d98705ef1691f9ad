package excel

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"carevisits/domain/core"
	"carevisits/domain/survey"
	apperrors "carevisits/internal/errors"
	"carevisits/ports"

	"github.com/xuri/excelize/v2"
)

// SurveyReader loads the tidy survey table from an xlsx export. The first
// row must carry the column names of the tidy schema; cell spellings like
// "NA" or blank decode to missing.
type SurveyReader struct {
	filePath string
	sheet    string
}

var _ ports.ObservationSource = (*SurveyReader)(nil)

// NewSurveyReader creates a reader over Sheet1 of the given file.
func NewSurveyReader(filePath string) *SurveyReader {
	return &SurveyReader{filePath: filePath, sheet: "Sheet1"}
}

// LoadObservations reads and decodes every data row.
func (r *SurveyReader) LoadObservations(ctx context.Context) (survey.Table, error) {
	start := time.Now()

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, apperrors.InvalidInput("survey file not found: " + r.filePath)
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, apperrors.InvalidInput("failed to open survey file").WithCause(err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	if len(rows) < 1 {
		return nil, apperrors.InvalidInput("survey file has no header row")
	}

	header := rows[0]
	if err := survey.ValidateHeader(header); err != nil {
		return nil, err
	}
	colIndex := make(map[core.FieldKey]int, len(header))
	for i, name := range header {
		colIndex[core.FieldKey(strings.ToLower(strings.TrimSpace(name)))] = i
	}

	table := make(survey.Table, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		table = append(table, decodeRow(raw, colIndex))
	}

	log.Printf("[SurveyReader] loaded %d observations from %s in %.1fms",
		len(table), r.filePath, float64(time.Since(start).Microseconds())/1000)
	return table, nil
}

func decodeRow(raw []string, colIndex map[core.FieldKey]int) survey.Observation {
	cell := func(f core.FieldKey) string {
		i, ok := colIndex[f]
		if !ok || i >= len(raw) {
			return ""
		}
		return raw[i]
	}

	var o survey.Observation
	if v, err := strconv.Atoi(strings.TrimSpace(cell(survey.FieldVisits))); err == nil && v >= 0 {
		o.Visits = &v
	}
	o.Depression = survey.ParseYesNo(cell(survey.FieldDepression))
	o.Chronic = survey.ParseYesNo(cell(survey.FieldChronic))
	o.HeartAttack = survey.ParseYesNo(cell(survey.FieldHeartAttack))
	o.AnginaOrCHD = survey.ParseYesNo(cell(survey.FieldAnginaOrCHD))
	o.Stroke = survey.ParseYesNo(cell(survey.FieldStroke))
	o.Asthma = survey.ParseYesNo(cell(survey.FieldAsthma))
	o.SkinCancer = survey.ParseYesNo(cell(survey.FieldSkinCancer))
	o.OtherCancer = survey.ParseYesNo(cell(survey.FieldOtherCancer))
	o.COPD = survey.ParseYesNo(cell(survey.FieldCOPD))
	o.Arthritis = survey.ParseYesNo(cell(survey.FieldArthritis))
	o.Diabetes = survey.ParseYesNo(cell(survey.FieldDiabetes))
	o.KidneyDisease = survey.ParseYesNo(cell(survey.FieldKidneyDisease))
	return o
}
