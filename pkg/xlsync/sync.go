package xlsync

import (
	"errors"
	"reflect"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ukaji3/xlsync-go/internal/logger"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/address"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/projector"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/reconcile"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/store"
)

var tableRowType = reflect.TypeOf(models.TableRow{})

const (
	opSynchronize = "synchronize"
	opQuery       = "query"
	opSheets      = "sheets"
)

// Action is what Synchronize did to the table.
type Action = reconcile.Action

const (
	ActionNone     = reconcile.ActionNone
	ActionCreated  = reconcile.ActionCreated
	ActionReplaced = reconcile.ActionReplaced
	ActionUpdated  = reconcile.ActionUpdated
)

// SyncResult describes a successful Synchronize call.
type SyncResult struct {
	// Objects holds the objects that were written, without nils.
	Objects []interface{} `json:"-"`
	// Table is the name of the table written.
	Table string `json:"table,omitempty"`
	// Action is the action taken on the table.
	Action Action `json:"action,omitempty"`
	// Rows is the number of data rows written.
	Rows int `json:"rows"`
	// Created reports whether the workbook file was created.
	Created bool `json:"created"`
}

// Synchronize writes objects as a table of the workbook at path, combining
// them with any existing table according to opts.Mode. The workbook file is
// created if it does not exist, except in UpdateOnly mode.
//
// On failure the returned result is empty and the error is an *Error.
func Synchronize(path string, objects []interface{}, opts SyncOptions) (res *SyncResult, err error) {
	log := callLogger(opts.Logger, opSynchronize, path)
	defer func() {
		if r := recover(); r != nil {
			err = panicError(opSynchronize, r)
		}
		if err != nil {
			log.Error("synchronization failed", zap.Error(err))
			res = &SyncResult{}
		}
	}()
	return synchronize(path, objects, opts, log)
}

func synchronize(path string, objects []interface{}, opts SyncOptions, log *zap.Logger) (*SyncResult, error) {
	mode := opts.Mode.resolve()
	if !mode.Valid() {
		return nil, classify(opSynchronize, &reconcile.UnsupportedModeError{Mode: reconcile.Mode(opts.Mode)})
	}

	cfg := opts.Config
	if cfg == nil {
		log.Info("no push configuration given, using defaults")
		def := DefaultPushConfig()
		cfg = &def
	}

	start := cfg.start()
	if address.FormatCell(start) == "" {
		return nil, newError(KindInput, opSynchronize, "invalid starting cell", ErrInvalidRange)
	}

	live := projector.Compact(objects)
	rows, err := projector.ToRows(live, cfg.ObjectProperties)
	if err != nil {
		return nil, classify(opSynchronize, err)
	}

	table := cfg.Worksheet
	if table == "" {
		table = tableName(live[0])
	}
	table = store.SanitizeName(table)

	log = log.With(zap.String("table", table), zap.String("mode", string(mode)))

	wb, created, err := store.OpenOrCreate(path, mode != reconcile.UpdateOnly)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return nil, newError(KindInput, opSynchronize, "there is no workbook to update", err)
		}
		return nil, classify(opSynchronize, err)
	}
	defer wb.Close()

	outcome, err := reconcile.Apply(wb, mode, table, start, rows)
	if err != nil {
		return nil, classify(opSynchronize, err)
	}

	result := &SyncResult{
		Objects: live,
		Table:   outcome.Table,
		Action:  outcome.Action,
		Created: created,
	}
	if outcome.Action != ActionNone {
		result.Rows = len(rows) - 1
	}

	if outcome.Action == ActionNone && cfg.WorkbookProperties == nil {
		log.Info("table exists, nothing to do")
		return result, nil
	}

	if cfg.WorkbookProperties != nil {
		if err := wb.SetProperties(*cfg.WorkbookProperties); err != nil {
			return nil, newError(KindPersistence, opSynchronize, "failed to set workbook properties", err)
		}
	}
	if err := wb.Save(path); err != nil {
		return nil, newError(KindPersistence, opSynchronize, "failed to save workbook", err)
	}

	log.Info("table synchronized",
		zap.String("action", string(outcome.Action)),
		zap.Int("rows", result.Rows),
		zap.Bool("created", created))
	return result, nil
}

// callLogger returns l, or the global logger, with per-call fields.
func callLogger(l *zap.Logger, op, path string) *zap.Logger {
	if l == nil {
		l = logger.Get()
	}
	return l.With(
		zap.String("op", op),
		zap.String("call_id", uuid.NewString()),
		zap.String("path", path),
	)
}

// tableName derives a table name from the type of obj.
func tableName(obj interface{}) string {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == tableRowType || t.Name() == "" {
		return store.DefaultSheetName
	}
	return t.Name()
}
