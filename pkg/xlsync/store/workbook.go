// Package store wraps an excelize workbook with the table-level operations
// used by the synchronization and read paths.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
)

// ErrNotExist indicates the workbook file does not exist.
var ErrNotExist = errors.New("workbook does not exist")

// ErrSheetNotExist is re-exported from excelize and indicates that a named
// table does not exist in the workbook.
type ErrSheetNotExist = excelize.ErrSheetNotExist

// CorruptError indicates the file exists but is not a readable workbook.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s is not a valid workbook: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Workbook is an in-memory workbook. Changes reach the disk only on Save.
type Workbook struct {
	f *excelize.File
	// placeholder names a sheet that only exists because a workbook needs at
	// least one sheet. It is not reported as a table and is dropped as soon as
	// a real table is created.
	placeholder string
}

// New creates an empty workbook.
func New() *Workbook {
	f := excelize.NewFile()
	return &Workbook{f: f, placeholder: f.GetSheetName(0)}
}

// Open reads the workbook at path. The file is opened read-only and released
// before Open returns.
func Open(path string) (*Workbook, error) {
	fh, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return nil, err
	}
	defer fh.Close()

	f, err := excelize.OpenReader(fh)
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return &Workbook{f: f}, nil
}

// OpenOrCreate opens the workbook at path, or creates an empty one when the
// file does not exist and create is true. The second result reports whether a
// new workbook was created.
func OpenOrCreate(path string, create bool) (*Workbook, bool, error) {
	wb, err := Open(path)
	if err == nil {
		return wb, false, nil
	}
	if errors.Is(err, ErrNotExist) && create {
		return New(), true, nil
	}
	return nil, false, err
}

// Close releases the workbook's resources.
func (w *Workbook) Close() error {
	return w.f.Close()
}

// File returns the underlying excelize file.
func (w *Workbook) File() *excelize.File {
	return w.f
}

// TableNames returns the table names in workbook order.
func (w *Workbook) TableNames() []string {
	var names []string
	for _, name := range w.f.GetSheetList() {
		if name == w.placeholder {
			continue
		}
		names = append(names, name)
	}
	return names
}

// HasTable reports whether a table with the given name exists.
// Sheet names compare case-insensitively, as in Excel.
func (w *Workbook) HasTable(name string) bool {
	_, ok := w.lookup(name)
	return ok
}

// lookup returns the stored spelling of a table name.
func (w *Workbook) lookup(name string) (string, bool) {
	for _, existing := range w.TableNames() {
		if strings.EqualFold(existing, name) {
			return existing, true
		}
	}
	return "", false
}

// CreateTable adds a table. The name is sanitized and made unique first;
// the name actually used is returned.
func (w *Workbook) CreateTable(name string) (string, error) {
	sheet := SanitizeName(name)

	if w.placeholder != "" && strings.EqualFold(w.placeholder, sheet) {
		if sheet != w.placeholder {
			if err := w.f.SetSheetName(w.placeholder, sheet); err != nil {
				return "", fmt.Errorf("rename sheet %q: %w", w.placeholder, err)
			}
		}
		w.placeholder = ""
		return sheet, nil
	}

	sheet = UniqueName(sheet, w.f.GetSheetList())
	if _, err := w.f.NewSheet(sheet); err != nil {
		return "", fmt.Errorf("create sheet %q: %w", sheet, err)
	}

	if w.placeholder != "" {
		if err := w.f.DeleteSheet(w.placeholder); err != nil {
			return sheet, fmt.Errorf("remove placeholder sheet %q: %w", w.placeholder, err)
		}
		w.placeholder = ""
	}
	w.activate(sheet)

	return sheet, nil
}

// DeleteTable removes a table and its contents.
func (w *Workbook) DeleteTable(name string) error {
	sheet, ok := w.lookup(name)
	if !ok {
		return ErrSheetNotExist{SheetName: name}
	}

	// excelize refuses to delete the last sheet of a workbook.
	if len(w.f.GetSheetList()) == 1 {
		placeholder := UniqueName(DefaultSheetName, w.f.GetSheetList())
		if _, err := w.f.NewSheet(placeholder); err != nil {
			return fmt.Errorf("create placeholder sheet: %w", err)
		}
		w.placeholder = placeholder
	}

	if err := w.f.DeleteSheet(sheet); err != nil {
		return fmt.Errorf("delete sheet %q: %w", sheet, err)
	}
	w.activate(w.f.GetSheetName(0))
	return nil
}

func (w *Workbook) activate(sheet string) {
	if idx, err := w.f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		w.f.SetActiveSheet(idx)
	}
}

// Tables describes every table with its used region.
func (w *Workbook) Tables() ([]models.SheetInfo, error) {
	var infos []models.SheetInfo
	for _, name := range w.TableNames() {
		info, err := w.Describe(name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SetProperties writes workbook-level metadata. Empty fields keep their
// current value.
func (w *Workbook) SetProperties(p models.DocProperties) error {
	if p.IsZero() {
		return nil
	}

	props, err := w.f.GetDocProps()
	if err != nil || props == nil {
		props = &excelize.DocProperties{}
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&props.Title, p.Title)
	set(&props.Subject, p.Subject)
	set(&props.Creator, p.Creator)
	set(&props.Keywords, p.Keywords)
	set(&props.Description, p.Description)
	set(&props.Category, p.Category)
	set(&props.Language, p.Language)

	return w.f.SetDocProps(props)
}

// Properties returns the workbook-level metadata.
func (w *Workbook) Properties() (models.DocProperties, error) {
	props, err := w.f.GetDocProps()
	if err != nil {
		return models.DocProperties{}, err
	}
	return models.DocProperties{
		Title:       props.Title,
		Subject:     props.Subject,
		Creator:     props.Creator,
		Keywords:    props.Keywords,
		Description: props.Description,
		Category:    props.Category,
		Language:    props.Language,
	}, nil
}

// Save writes the workbook to path. The data goes to a temporary file in
// the same directory which then replaces path, so a failed save leaves any
// existing file untouched.
func (w *Workbook) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".xlsync-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if err := w.f.Write(tmp); err != nil {
		cleanup()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close workbook: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("set permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
