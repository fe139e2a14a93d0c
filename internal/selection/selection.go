// Package selection tracks which tables and columns a user has picked for a
// data access request, together with the optional WHERE predicate per table.
//
// The selection is an ordered table → column-set map with two invariants
// that hold after every mutation:
//
//   - a table entry never maps to an empty column set (absence of the entry
//     means nothing is selected for that table), and
//   - every selected column is a real, non-identifiable column of the
//     catalogue the mutation was validated against.
//
// All mutation goes through ToggleColumn, ToggleAllColumns and SetFilter.
// The selection models one user filling in one form; it is not safe for
// concurrent use.
package selection

import (
	"fmt"

	"github.com/civic-health-innovation-labs/AppDAR/internal/catalogue"
)

// ConstraintError reports a mutation that would violate a selection
// invariant, such as selecting an identifiable column. It always indicates a
// defect in the caller, not a recoverable user error.
type ConstraintError struct {
	Table  string
	Column string
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("selection constraint violated on %s.%s: %s", e.Table, e.Column, e.Reason)
}

// columnSet is an insertion-ordered set of column names.
type columnSet struct {
	order   []string
	members map[string]struct{}
}

func newColumnSet() *columnSet {
	return &columnSet{members: make(map[string]struct{})}
}

func (s *columnSet) add(name string) {
	if _, ok := s.members[name]; ok {
		return
	}
	s.members[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s *columnSet) remove(name string) {
	if _, ok := s.members[name]; !ok {
		return
	}
	delete(s.members, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *columnSet) has(name string) bool {
	_, ok := s.members[name]
	return ok
}

func (s *columnSet) empty() bool {
	return len(s.members) == 0
}

// Selection is the mutable selection state for one request session. The zero
// value is not usable; construct with New.
type Selection struct {
	order   []string
	columns map[string]*columnSet
	filters map[string]string
}

// New creates an empty selection.
func New() *Selection {
	return &Selection{
		columns: make(map[string]*columnSet),
		filters: make(map[string]string),
	}
}

// ToggleColumn selects or deselects a single column of a table. The column
// must exist in the catalogue and must not be identifiable; both are
// enforced here regardless of what the presentation layer allows. Toggling
// to the current state is a no-op, and deselecting the last column of a
// table removes the table entry entirely.
func (s *Selection) ToggleColumn(cat *catalogue.Catalogue, tableName, columnName string, selected bool) error {
	if err := s.checkEligible(cat, tableName, columnName); err != nil {
		return err
	}

	set, ok := s.columns[tableName]
	if !ok {
		if !selected {
			// Nothing selected for this table, nothing to remove.
			return nil
		}
		set = newColumnSet()
		s.columns[tableName] = set
		s.order = append(s.order, tableName)
	}

	if selected {
		set.add(columnName)
		return nil
	}

	set.remove(columnName)
	if set.empty() {
		s.removeTable(tableName)
	}
	return nil
}

// ToggleAllColumns selects or deselects a whole table. On select the table's
// entry is replaced by the eligible subset of columnNames in the given
// order: identifiable columns and names unknown to the catalogue are
// silently dropped, so "select all" can never pick up a sensitive column.
// On deselect the table entry is removed outright.
func (s *Selection) ToggleAllColumns(cat *catalogue.Catalogue, tableName string, columnNames []string, selected bool) error {
	if !selected {
		s.removeTable(tableName)
		return nil
	}

	table, ok := cat.Table(tableName)
	if !ok {
		return &ConstraintError{Table: tableName, Reason: "table not present in catalogue"}
	}

	set := newColumnSet()
	for _, name := range columnNames {
		col, ok := table.Column(name)
		if !ok || col.Identifiable {
			continue
		}
		set.add(name)
	}

	if set.empty() {
		// No eligible column at all; an empty entry must never exist.
		s.removeTable(tableName)
		return nil
	}

	if _, ok := s.columns[tableName]; !ok {
		s.order = append(s.order, tableName)
	}
	s.columns[tableName] = set
	return nil
}

// SetFilter records the raw WHERE predicate text for a table. The text is
// opaque to the engine and is passed through to the backend unvalidated. An
// empty string means "no filter" and clears any stored value.
func (s *Selection) SetFilter(tableName, where string) {
	if where == "" {
		delete(s.filters, tableName)
		return
	}
	s.filters[tableName] = where
}

// Filter returns the WHERE predicate for a table, but only while the table
// has selected columns: a dangling filter for an unselected table is
// retained internally yet never visible to readers.
func (s *Selection) Filter(tableName string) (string, bool) {
	if _, ok := s.columns[tableName]; !ok {
		return "", false
	}
	where, ok := s.filters[tableName]
	return where, ok
}

// Tables returns the selected table names in insertion order.
func (s *Selection) Tables() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Columns returns the selected columns of a table in selection order.
func (s *Selection) Columns(tableName string) []string {
	set, ok := s.columns[tableName]
	if !ok {
		return nil
	}
	out := make([]string, len(set.order))
	copy(out, set.order)
	return out
}

// Selected reports whether the given column is currently selected.
func (s *Selection) Selected(tableName, columnName string) bool {
	set, ok := s.columns[tableName]
	return ok && set.has(columnName)
}

// Empty reports whether nothing at all is selected.
func (s *Selection) Empty() bool {
	return len(s.order) == 0
}

func (s *Selection) removeTable(tableName string) {
	if _, ok := s.columns[tableName]; !ok {
		return
	}
	delete(s.columns, tableName)
	for i, name := range s.order {
		if name == tableName {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Selection) checkEligible(cat *catalogue.Catalogue, tableName, columnName string) error {
	table, ok := cat.Table(tableName)
	if !ok {
		return &ConstraintError{Table: tableName, Column: columnName, Reason: "table not present in catalogue"}
	}
	col, ok := table.Column(columnName)
	if !ok {
		return &ConstraintError{Table: tableName, Column: columnName, Reason: "column not present in catalogue"}
	}
	if col.Identifiable {
		return &ConstraintError{Table: tableName, Column: columnName, Reason: "column is identifiable and can never be selected"}
	}
	return nil
}
