// Package reconcile decides how new rows are combined with an existing table.
package reconcile

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// Mode is the policy applied when a table is synchronized.
type Mode string

const (
	// CreateNonExisting creates the table if it is absent and leaves an
	// existing table alone.
	CreateNonExisting Mode = "create"
	// DeleteThenCreate replaces an existing table with a new one.
	DeleteThenCreate Mode = "replace"
	// UpdateOnly overwrites the rows of an existing table and fails if the
	// table is absent.
	UpdateOnly Mode = "update"
	// UpdateOrCreateOnly overwrites an existing table or creates it.
	UpdateOrCreateOnly Mode = "upsert"
)

// Action is what Apply did to the workbook.
type Action string

const (
	ActionNone     Action = "none"
	ActionCreated  Action = "created"
	ActionReplaced Action = "replaced"
	ActionUpdated  Action = "updated"
)

var (
	// ErrNoTable indicates an update was requested for a table that does not exist.
	ErrNoTable = errors.New("there is no table to update")
	// ErrNoData indicates a table was to be created from an empty row set.
	ErrNoData = errors.New("input table is empty")
)

// UnsupportedModeError reports a mode Apply does not know.
type UnsupportedModeError struct {
	Mode Mode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("unsupported synchronization mode %q", string(e.Mode))
}

// Store is the table storage Apply works against.
type Store interface {
	HasTable(name string) bool
	CreateTable(name string) (string, error)
	DeleteTable(name string) error
	WriteRegion(table string, start models.CellAddress, rows []models.TableRow) error
}

// Outcome describes the result of Apply.
type Outcome struct {
	// Action is the action taken.
	Action Action
	// Table is the name of the table written, which can differ from the
	// requested name after sanitizing.
	Table string
}

// Modes lists the supported modes.
func Modes() []Mode {
	return []Mode{CreateNonExisting, DeleteThenCreate, UpdateOnly, UpdateOrCreateOnly}
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	for _, known := range Modes() {
		if m == known {
			return true
		}
	}
	return false
}

// Apply synchronizes rows into the table named table according to mode,
// writing from start. Every step of a multi-step mode is attempted even if an
// earlier one failed; the returned error combines all failures, and a non-nil
// error means the table state is not guaranteed.
func Apply(s Store, mode Mode, table string, start models.CellAddress, rows []models.TableRow) (Outcome, error) {
	if !mode.Valid() {
		return Outcome{Action: ActionNone}, &UnsupportedModeError{Mode: mode}
	}

	exists := s.HasTable(table)
	outcome := Outcome{Action: ActionNone, Table: table}

	switch mode {
	case CreateNonExisting:
		if exists {
			return outcome, nil
		}
		return create(s, table, start, rows)

	case DeleteThenCreate:
		if !exists {
			return create(s, table, start, rows)
		}
		var err error
		if delErr := s.DeleteTable(table); delErr != nil {
			err = multierr.Append(err, fmt.Errorf("delete table %q: %w", table, delErr))
		}
		outcome, createErr := create(s, table, start, rows)
		err = multierr.Append(err, createErr)
		if err == nil {
			outcome.Action = ActionReplaced
		}
		return outcome, err

	case UpdateOnly:
		if !exists {
			return outcome, fmt.Errorf("%w: %q", ErrNoTable, table)
		}
		return update(s, table, start, rows)

	default: // UpdateOrCreateOnly
		if !exists {
			return create(s, table, start, rows)
		}
		return update(s, table, start, rows)
	}
}

func create(s Store, table string, start models.CellAddress, rows []models.TableRow) (Outcome, error) {
	outcome := Outcome{Action: ActionNone, Table: table}
	if len(rows) == 0 {
		return outcome, fmt.Errorf("create table %q: %w", table, ErrNoData)
	}

	name, err := s.CreateTable(table)
	if err != nil {
		return outcome, fmt.Errorf("create table %q: %w", table, err)
	}
	outcome.Table = name

	if err := s.WriteRegion(name, start, rows); err != nil {
		return outcome, fmt.Errorf("write table %q: %w", name, err)
	}
	outcome.Action = ActionCreated
	return outcome, nil
}

func update(s Store, table string, start models.CellAddress, rows []models.TableRow) (Outcome, error) {
	outcome := Outcome{Action: ActionNone, Table: table}
	if err := s.WriteRegion(table, start, rows); err != nil {
		return outcome, fmt.Errorf("update table %q: %w", table, err)
	}
	outcome.Action = ActionUpdated
	return outcome, nil
}
