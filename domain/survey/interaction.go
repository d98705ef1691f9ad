package survey

// InteractionLevel is the four-level factor formed from the Cartesian
// product of depression and chronic, in that order.
type InteractionLevel string

const (
	YesYes InteractionLevel = "Yes.Yes"
	NoYes  InteractionLevel = "No.Yes"
	YesNo_ InteractionLevel = "Yes.No"
	NoNo   InteractionLevel = "No.No"
)

func (l InteractionLevel) String() string {
	return string(l)
}

// InteractionLevels returns the report ordering of the four levels.
func InteractionLevels() []InteractionLevel {
	return []InteractionLevel{YesYes, NoYes, YesNo_, NoNo}
}

// Interaction derives the row's interaction level: the literal
// concatenation "<depression>.<chronic>". The second return is false when
// either factor is missing.
func (o Observation) Interaction() (InteractionLevel, bool) {
	if !o.Depression.Present() || !o.Chronic.Present() {
		return "", false
	}
	return InteractionLevel(string(o.Depression) + "." + string(o.Chronic)), true
}
