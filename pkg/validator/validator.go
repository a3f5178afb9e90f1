package validator

import (
	"fmt"

	"orrery-hq/natal/pkg/astro"
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

// Validator runs the astrological checks on a parsed formula. Names are
// checked first, then value ranges, then dignity consistency.
type Validator struct {
	table  *astro.Table
	names  *NameValidator
	ranges *RangeValidator
	dign   *DignityValidator
}

// New creates a validator using the given dignity table.
func New(table *astro.Table) *Validator {
	return &Validator{
		table:  table,
		names:  NewNameValidator(),
		ranges: NewRangeValidator(),
		dign:   NewDignityValidator(table),
	}
}

// NewDefault creates a validator with the built-in dignity table for mode.
func NewDefault(mode astro.Mode) (*Validator, error) {
	table, err := astro.DefaultTable(mode)
	if err != nil {
		return nil, fmt.Errorf("failed to load dignity table: %w", err)
	}
	return New(table), nil
}

// WithBodies registers extra entity names (custom points) as known bodies.
func (v *Validator) WithBodies(names ...string) *Validator {
	v.names.extra = append(v.names.extra, names...)
	return v
}

// Table returns the dignity table in use.
func (v *Validator) Table() *astro.Table { return v.table }

// Diagnose runs every pass and returns all diagnostics, warnings and
// infos included.
func (v *Validator) Diagnose(root ast.Node) *formulaErrors.ErrorList {
	list := formulaErrors.NewErrorList()
	if root == nil {
		return list
	}
	v.names.Check(root, list)
	v.ranges.Check(root, list)
	v.dign.Check(root, list)
	return list
}

// Validate returns an *errors.ErrorList if the formula has at least one
// error-severity problem, and nil otherwise.
func (v *Validator) Validate(root ast.Node) error {
	return v.Diagnose(root).ToError()
}

func domain(list *formulaErrors.ErrorList, severity formulaErrors.Severity, pos ast.Position, suggestion, format string, args ...any) {
	list.AddErrorWithSuggestion(formulaErrors.ErrorTypeDomain, severity, fmt.Sprintf(format, args...), pos, suggestion)
}
