package survey

import (
	"reflect"
	"testing"

	"carevisits/domain/core"
)

func obs(visits int, dep, chr YesNo) Observation {
	o := Observation{Depression: dep, Chronic: chr}
	if visits >= 0 {
		o.Visits = &visits
	}
	return o
}

func TestFilterCompleteCases(t *testing.T) {
	table := Table{
		obs(3, Yes, No),
		obs(-1, Yes, No),  // missing visits
		obs(5, "", Yes),   // missing depression
		obs(0, No, ""),    // missing chronic
		obs(12, Yes, Yes),
	}

	dep := table.Filter(FieldVisits, FieldDepression)
	if len(dep) != 3 {
		t.Fatalf("expected 3 complete depression cases, got %d", len(dep))
	}
	both := table.Filter(FieldVisits, FieldDepression, FieldChronic)
	if len(both) != 2 {
		t.Fatalf("expected 2 complete interaction cases, got %d", len(both))
	}

	// original row order preserved
	if *both[0].Visits != 3 || *both[1].Visits != 12 {
		t.Errorf("filter reordered rows: got visits %d, %d", *both[0].Visits, *both[1].Visits)
	}
}

func TestFilterIdempotent(t *testing.T) {
	table := Table{
		obs(3, Yes, No),
		obs(-1, Yes, Yes),
		obs(7, No, ""),
		obs(1, No, No),
	}
	once := table.Filter(FieldVisits, FieldDepression, FieldChronic)
	twice := once.Filter(FieldVisits, FieldDepression, FieldChronic)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filtering a filtered table changed it: %v vs %v", once, twice)
	}
}

func TestHeavyUtilizers(t *testing.T) {
	table := Table{obs(0, Yes, No), obs(4, Yes, No), obs(5, No, No), obs(20, Yes, Yes), obs(-1, No, No)}
	heavy := table.HeavyUtilizers()
	if len(heavy) != 2 {
		t.Fatalf("expected 2 heavy utilizers (visits > 4), got %d", len(heavy))
	}
	for _, o := range heavy {
		if *o.Visits <= 4 {
			t.Errorf("heavy utilizer with visits %d", *o.Visits)
		}
	}
}

func TestInteractionDerivation(t *testing.T) {
	cases := []struct {
		dep, chr YesNo
		want     InteractionLevel
	}{
		{Yes, Yes, YesYes},
		{No, Yes, NoYes},
		{Yes, No, YesNo_},
		{No, No, NoNo},
	}
	for _, c := range cases {
		got, ok := obs(1, c.dep, c.chr).Interaction()
		if !ok {
			t.Fatalf("interaction missing for %s/%s", c.dep, c.chr)
		}
		if got != c.want {
			t.Errorf("interaction for %s/%s = %s, want %s", c.dep, c.chr, got, c.want)
		}
		// literal concatenation of depression then chronic
		if got.String() != string(c.dep)+"."+string(c.chr) {
			t.Errorf("interaction %s is not the literal concatenation", got)
		}
	}

	if _, ok := obs(1, Yes, "").Interaction(); ok {
		t.Error("interaction should be missing when chronic is missing")
	}
	if levels := InteractionLevels(); len(levels) != 4 {
		t.Errorf("expected exactly 4 interaction levels, got %d", len(levels))
	}
}

func TestValidateHeader(t *testing.T) {
	cols := make([]string, 0)
	for _, f := range AllFields() {
		cols = append(cols, f.String())
	}
	if err := ValidateHeader(cols); err != nil {
		t.Fatalf("complete header rejected: %v", err)
	}

	missing := cols[:len(cols)-1] // drop kidney_disease
	err := ValidateHeader(missing)
	if !core.IsMissingFieldError(err) {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestParseYesNo(t *testing.T) {
	for raw, want := range map[string]YesNo{
		"Yes": Yes, "yes": Yes, "1": Yes,
		"No": No, "no": No, "0": No,
		"": "", "NA": "", "maybe": "",
	} {
		if got := ParseYesNo(raw); got != want {
			t.Errorf("ParseYesNo(%q) = %q, want %q", raw, got, want)
		}
	}
}
