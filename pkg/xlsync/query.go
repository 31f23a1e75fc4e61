package xlsync

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/ukaji3/xlsync-go/pkg/xlsync/address"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/models"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/projector"
	"github.com/ukaji3/xlsync-go/pkg/xlsync/store"
)

// Request selects what Query reads. The worksheet may be empty to select the
// first worksheet and the range may be empty to select the used region. A
// range may also name a defined name of the workbook, such as a print area.
// A range that refers to a worksheet ("Sheet2!A1:B5") reads that worksheet.
type Request interface {
	Target() (worksheet, rng string)
}

// ObjectRequest reads rows as records. The first row of the range is the
// header. Type is the record type; nil selects *models.GenericRecord.
type ObjectRequest struct {
	Worksheet string
	Range     string
	Type      reflect.Type
}

// Target implements Request.
func (r ObjectRequest) Target() (string, string) { return r.Worksheet, r.Range }

// CellValuesRequest reads the typed values of a range.
type CellValuesRequest struct {
	Worksheet string
	Range     string
}

// Target implements Request.
func (r CellValuesRequest) Target() (string, string) { return r.Worksheet, r.Range }

// CellContentsRequest reads the stored contents of a range as
// models.CellContents values.
type CellContentsRequest struct {
	Worksheet string
	Range     string
}

// Target implements Request.
func (r CellContentsRequest) Target() (string, string) { return r.Worksheet, r.Range }

// QueryResult is the result of Query.
type QueryResult struct {
	// Worksheet is the worksheet that was read.
	Worksheet string `json:"worksheet"`
	// Range is the range that was read; empty if the worksheet is empty.
	Range string `json:"range,omitempty"`
	// Objects holds the records of an ObjectRequest.
	Objects []interface{} `json:"objects,omitempty"`
	// Rows holds the cells of a CellValuesRequest or CellContentsRequest.
	Rows []models.TableRow `json:"rows,omitempty"`
	// Skipped lists rows of an ObjectRequest that could not be converted.
	Skipped []projector.SkippedRow `json:"skipped,omitempty"`
	// Warnings holds non-fatal notes.
	Warnings []string `json:"warnings,omitempty"`
}

// Query reads the workbook at path as described by req. The file is opened
// read-only and never modified.
//
// On failure the returned result is empty and the error is an *Error.
func Query(path string, req Request, opts QueryOptions) (res *QueryResult, err error) {
	log := callLogger(opts.Logger, opQuery, path)
	defer func() {
		if r := recover(); r != nil {
			err = panicError(opQuery, r)
		}
		if err != nil {
			log.Error("query failed", zap.Error(err))
			res = &QueryResult{}
		}
	}()
	return query(path, req, log)
}

func query(path string, req Request, log *zap.Logger) (*QueryResult, error) {
	switch req.(type) {
	case ObjectRequest, *ObjectRequest, CellValuesRequest, *CellValuesRequest, CellContentsRequest, *CellContentsRequest:
	default:
		return nil, newError(KindInput, opQuery, fmt.Sprintf("request of type %T", req), ErrUnsupportedRequest)
	}
	if v := reflect.ValueOf(req); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil, newError(KindInput, opQuery, "nil request", ErrUnsupportedRequest)
	}

	wb, err := store.Open(path)
	if err != nil {
		return nil, classify(opQuery, err)
	}
	defer wb.Close()

	sheet, r, err := target(wb, req)
	if err != nil {
		return nil, classify(opQuery, err)
	}
	log = log.With(zap.String("worksheet", sheet))

	result := &QueryResult{Worksheet: sheet}

	switch q := req.(type) {
	case ObjectRequest:
		err = readObjects(wb, sheet, r, q.Type, result, log)
	case *ObjectRequest:
		err = readObjects(wb, sheet, r, q.Type, result, log)
	case CellContentsRequest, *CellContentsRequest:
		result.Rows, err = wb.ReadContents(sheet, r)
	default:
		result.Rows, err = wb.ReadValues(sheet, r)
	}
	if err != nil {
		return nil, classify(opQuery, err)
	}

	if r.IsZero() {
		if used, uerr := wb.UsedRegion(sheet); uerr == nil && !used.IsZero() {
			r = used
		}
	}
	if !r.IsZero() {
		result.Range = address.FormatRange(r)
	}

	log.Debug("worksheet read",
		zap.String("range", result.Range),
		zap.Int("rows", len(result.Rows)),
		zap.Int("objects", len(result.Objects)))
	return result, nil
}

func readObjects(wb *store.Workbook, sheet string, r models.CellRange, shape reflect.Type, result *QueryResult, log *zap.Logger) error {
	rows, err := wb.ReadValues(sheet, r)
	if err != nil {
		return err
	}
	batch, err := projector.FromRows(rows, shape)
	if err != nil {
		return err
	}

	for _, w := range batch.Warnings {
		log.Warn(w)
	}
	for _, s := range batch.Skipped {
		log.Warn("row skipped", zap.Int("row", s.Row), zap.String("reason", s.Reason))
	}

	result.Objects = batch.Objects
	result.Skipped = batch.Skipped
	result.Warnings = batch.Warnings
	return nil
}

// target resolves the worksheet and range of req. A range that names a
// worksheet, by prefix or through a defined name, selects that worksheet when
// req names none and must agree with it otherwise.
func target(wb *store.Workbook, req Request) (string, models.CellRange, error) {
	worksheet, rng := req.Target()

	var sheet string
	if worksheet != "" {
		var err error
		if sheet, err = selectSheet(wb, worksheet); err != nil {
			return "", models.CellRange{}, err
		}
	}

	r, qualifier, err := wb.ResolveRange(sheet, rng)
	if err != nil {
		return "", models.CellRange{}, err
	}

	switch {
	case sheet == "":
		sheet, err = selectSheet(wb, qualifier)
		if err != nil {
			return "", models.CellRange{}, err
		}
	case qualifier != "" && !strings.EqualFold(qualifier, sheet):
		return "", models.CellRange{}, fmt.Errorf("%w: %q refers to worksheet %q, not %q",
			store.ErrInvalidRange, rng, qualifier, sheet)
	}
	return sheet, r, nil
}

// selectSheet returns the sheet named name, or the first sheet if name is
// empty.
func selectSheet(wb *store.Workbook, name string) (string, error) {
	names := wb.TableNames()
	if name == "" {
		if len(names) == 0 {
			return "", fmt.Errorf("%w: workbook has no worksheets", ErrSheetNotFound)
		}
		return names[0], nil
	}
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n, nil
		}
	}
	return "", store.ErrSheetNotExist{SheetName: name}
}

// QueryObjects reads rows of a worksheet as records of type T. See Query.
func QueryObjects[T any](path, worksheet, rng string, opts QueryOptions) ([]T, *QueryResult, error) {
	res, err := Query(path, ObjectRequest{
		Worksheet: worksheet,
		Range:     rng,
		Type:      reflect.TypeOf((*T)(nil)).Elem(),
	}, opts)
	if err != nil {
		return nil, res, err
	}
	out := make([]T, 0, len(res.Objects))
	for _, obj := range res.Objects {
		out = append(out, obj.(T))
	}
	return out, res, nil
}

// Sheets describes every worksheet of the workbook at path with its used
// region.
func Sheets(path string, opts QueryOptions) (infos []models.SheetInfo, err error) {
	log := callLogger(opts.Logger, opSheets, path)
	defer func() {
		if r := recover(); r != nil {
			err = panicError(opSheets, r)
		}
		if err != nil {
			log.Error("listing worksheets failed", zap.Error(err))
			infos = nil
		}
	}()

	wb, err := store.Open(path)
	if err != nil {
		return nil, classify(opSheets, err)
	}
	defer wb.Close()

	infos, err = wb.Tables()
	if err != nil {
		return nil, classify(opSheets, err)
	}
	return infos, nil
}
