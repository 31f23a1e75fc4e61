// Package xlsync synchronizes collections of objects with worksheet tables in
// xlsx workbooks and reads worksheet rows back as objects or cell values.
package xlsync

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/reconcile"
)

// SyncMode represents how objects are combined with an existing table.
type SyncMode string

const (
	// AdapterDefault selects the default mode, DeleteThenCreate.
	AdapterDefault SyncMode = "default"
	// CreateNonExisting creates the table only if it does not exist yet.
	CreateNonExisting SyncMode = SyncMode(reconcile.CreateNonExisting)
	// DeleteThenCreate replaces the table.
	DeleteThenCreate SyncMode = SyncMode(reconcile.DeleteThenCreate)
	// UpdateOnly overwrites an existing table and fails if there is none.
	UpdateOnly SyncMode = SyncMode(reconcile.UpdateOnly)
	// UpdateOrCreateOnly overwrites an existing table or creates it.
	UpdateOrCreateOnly SyncMode = SyncMode(reconcile.UpdateOrCreateOnly)
)

// modeAliases maps the accepted spellings of each mode.
var modeAliases = map[string]SyncMode{
	"":                   AdapterDefault,
	"default":            AdapterDefault,
	"adapterdefault":     AdapterDefault,
	"create":             CreateNonExisting,
	"createnonexisting":  CreateNonExisting,
	"replace":            DeleteThenCreate,
	"deletethencreate":   DeleteThenCreate,
	"update":             UpdateOnly,
	"updateonly":         UpdateOnly,
	"upsert":             UpdateOrCreateOnly,
	"updateorcreateonly": UpdateOrCreateOnly,
}

// ParseSyncMode parses a mode name such as "replace" or "UpdateOnly".
// Matching ignores case, dashes and underscores.
func ParseSyncMode(s string) (SyncMode, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	if m, ok := modeAliases[key]; ok {
		return m, nil
	}
	return "", newError(KindInput, "parse mode", fmt.Sprintf("unknown mode %q", s), &reconcile.UnsupportedModeError{Mode: reconcile.Mode(s)})
}

// resolve returns the reconcile mode m stands for.
func (m SyncMode) resolve() reconcile.Mode {
	if m == "" || m == AdapterDefault {
		return reconcile.DeleteThenCreate
	}
	return reconcile.Mode(m)
}

// PushConfig configures where and how objects are written.
type PushConfig struct {
	// Worksheet is the table name. If empty, the objects' type name is used.
	Worksheet string
	// StartingCell is where the header row begins. If nil, A1 is used.
	StartingCell *models.CellAddress
	// ObjectProperties selects and orders the columns. If empty, the columns
	// are derived from the objects.
	ObjectProperties []string
	// WorkbookProperties are written to the workbook's document properties
	// when not nil.
	WorkbookProperties *models.DocProperties
}

// DefaultPushConfig returns the configuration used when none is given.
func DefaultPushConfig() PushConfig {
	return PushConfig{}
}

// start returns the starting cell, defaulting to A1.
func (c PushConfig) start() models.CellAddress {
	if c.StartingCell == nil {
		return models.CellAddress{Column: "A", Row: 1}
	}
	return *c.StartingCell
}

// SyncOptions configures Synchronize.
type SyncOptions struct {
	// Mode specifies the synchronization mode. The zero value is AdapterDefault.
	Mode SyncMode
	// Config specifies the push configuration. If nil, DefaultPushConfig is used.
	Config *PushConfig
	// Logger receives diagnostics. If nil, the global logger is used.
	Logger *zap.Logger
}

// QueryOptions configures Query.
type QueryOptions struct {
	// Logger receives diagnostics. If nil, the global logger is used.
	Logger *zap.Logger
}
