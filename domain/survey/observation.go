package survey

import (
	"carevisits/domain/core"
)

// YesNo is a binary survey response. The zero value means the respondent
// did not answer (missing); missing is never treated as No.
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// Present reports whether the response was recorded at all.
func (v YesNo) Present() bool {
	return v == Yes || v == No
}

func (v YesNo) String() string {
	return string(v)
}

// Field keys for the tidy survey table.
const (
	FieldVisits        core.FieldKey = "visits"
	FieldDepression    core.FieldKey = "depression"
	FieldChronic       core.FieldKey = "chronic"
	FieldHeartAttack   core.FieldKey = "heart_attack"
	FieldAnginaOrCHD   core.FieldKey = "angina_or_chd"
	FieldStroke        core.FieldKey = "stroke"
	FieldAsthma        core.FieldKey = "asthma"
	FieldSkinCancer    core.FieldKey = "skin_cancer"
	FieldOtherCancer   core.FieldKey = "other_cancer"
	FieldCOPD          core.FieldKey = "copd"
	FieldArthritis     core.FieldKey = "arthritis"
	FieldDiabetes      core.FieldKey = "diabetes"
	FieldKidneyDisease core.FieldKey = "kidney_disease"
)

// Observation is one survey respondent record. Visits is nil when the
// respondent did not report a visit count.
type Observation struct {
	Visits        *int  `json:"visits,omitempty" db:"visits"`
	Depression    YesNo `json:"depression,omitempty" db:"depression"`
	Chronic       YesNo `json:"chronic,omitempty" db:"chronic"`
	HeartAttack   YesNo `json:"heart_attack,omitempty" db:"heart_attack"`
	AnginaOrCHD   YesNo `json:"angina_or_chd,omitempty" db:"angina_or_chd"`
	Stroke        YesNo `json:"stroke,omitempty" db:"stroke"`
	Asthma        YesNo `json:"asthma,omitempty" db:"asthma"`
	SkinCancer    YesNo `json:"skin_cancer,omitempty" db:"skin_cancer"`
	OtherCancer   YesNo `json:"other_cancer,omitempty" db:"other_cancer"`
	COPD          YesNo `json:"copd,omitempty" db:"copd"`
	Arthritis     YesNo `json:"arthritis,omitempty" db:"arthritis"`
	Diabetes      YesNo `json:"diabetes,omitempty" db:"diabetes"`
	KidneyDisease YesNo `json:"kidney_disease,omitempty" db:"kidney_disease"`
}

// binaryFields maps field keys to their accessor; visits is handled
// separately because it is count-valued.
var binaryFields = map[core.FieldKey]func(Observation) YesNo{
	FieldDepression:    func(o Observation) YesNo { return o.Depression },
	FieldChronic:       func(o Observation) YesNo { return o.Chronic },
	FieldHeartAttack:   func(o Observation) YesNo { return o.HeartAttack },
	FieldAnginaOrCHD:   func(o Observation) YesNo { return o.AnginaOrCHD },
	FieldStroke:        func(o Observation) YesNo { return o.Stroke },
	FieldAsthma:        func(o Observation) YesNo { return o.Asthma },
	FieldSkinCancer:    func(o Observation) YesNo { return o.SkinCancer },
	FieldOtherCancer:   func(o Observation) YesNo { return o.OtherCancer },
	FieldCOPD:          func(o Observation) YesNo { return o.COPD },
	FieldArthritis:     func(o Observation) YesNo { return o.Arthritis },
	FieldDiabetes:      func(o Observation) YesNo { return o.Diabetes },
	FieldKidneyDisease: func(o Observation) YesNo { return o.KidneyDisease },
}

// ConditionFields returns the twelve diagnosis fields in report order:
// depression first, then the chronic-illness indicators.
func ConditionFields() []core.FieldKey {
	return []core.FieldKey{
		FieldDepression,
		FieldChronic,
		FieldHeartAttack,
		FieldAnginaOrCHD,
		FieldStroke,
		FieldAsthma,
		FieldSkinCancer,
		FieldOtherCancer,
		FieldCOPD,
		FieldArthritis,
		FieldDiabetes,
		FieldKidneyDisease,
	}
}

// AllFields returns every field of the tidy table, visits first.
func AllFields() []core.FieldKey {
	return append([]core.FieldKey{FieldVisits}, ConditionFields()...)
}

// Binary returns the recorded response for a binary field and whether the
// key names a binary field at all.
func (o Observation) Binary(f core.FieldKey) (YesNo, bool) {
	get, ok := binaryFields[f]
	if !ok {
		return "", false
	}
	return get(o), true
}

// Has reports whether the given field is non-missing on this observation.
func (o Observation) Has(f core.FieldKey) bool {
	if f == FieldVisits {
		return o.Visits != nil
	}
	if v, ok := o.Binary(f); ok {
		return v.Present()
	}
	return false
}
