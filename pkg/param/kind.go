// Package param defines the vocabulary of a virtual trial: location kinds,
// typed parameter values, parameter definitions, and the identity tuples
// that make two runs "the same parameterization".
package param

// LocationKind names one category of simulator input folder.
// The set of kinds is closed; a folder always belongs to exactly one kind.
type LocationKind string

const (
	Config             LocationKind = "config"
	RulesetsCollection LocationKind = "rulesets"
	CustomCode         LocationKind = "custom_code"
	ICCell             LocationKind = "ic_cell"
	ICSubstrate        LocationKind = "ic_substrate"
	ICEcm              LocationKind = "ic_ecm"
	ICDendritic        LocationKind = "ic_dendritic"
	Intracellular      LocationKind = "intracellular"
)

// AllKinds returns every location kind in canonical order.
func AllKinds() []LocationKind {
	return []LocationKind{
		Config, RulesetsCollection, CustomCode, ICCell,
		ICSubstrate, ICEcm, ICDendritic, Intracellular,
	}
}

// VariableKinds returns the kinds whose parameters can be varied.
// CustomCode, ICSubstrate and ICDendritic inputs are used verbatim and
// never carry a variation table.
func VariableKinds() []LocationKind {
	return []LocationKind{
		Config, RulesetsCollection, ICCell, ICEcm, Intracellular,
	}
}

// Valid reports whether k is one of the closed set of kinds.
func (k LocationKind) Valid() bool {
	for _, v := range AllKinds() {
		if k == v {
			return true
		}
	}
	return false
}

// Variable reports whether parameters of this kind can be varied.
func (k LocationKind) Variable() bool {
	for _, v := range VariableKinds() {
		if k == v {
			return true
		}
	}
	return false
}

// VariationTable returns the name of the content-addressed variation
// table for a variable kind. Empty string for non-variable kinds.
func (k LocationKind) VariationTable() string {
	if !k.Variable() {
		return ""
	}
	return string(k) + "_variations"
}
