package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	// SQL-on-file query engine backing the extraction layer.
	_ "github.com/mattn/go-sqlite3"

	"github.com/YuminosukeSato/tripml/pkg/errors"
	"github.com/YuminosukeSato/tripml/pkg/log"
)

// Engine is the query-engine context of the pipeline. It registers columnar
// files as tables and materializes SELECT results as in-memory Tables.
type Engine struct {
	db     *sql.DB
	logger log.Logger
}

// Open acquires an engine context backed by the database file at path.
// The file is created if it does not exist.
func Open(path string) (*Engine, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.NewQueryError("dataset.Open", "", err)
	}
	return &Engine{db: db, logger: log.GetLoggerWithName("dataset")}, nil
}

// OpenInMemory acquires an engine context that lives only for the process.
func OpenInMemory() (*Engine, error) {
	return Open(":memory:")
}

// Close releases the engine context.
func (e *Engine) Close() error {
	return e.db.Close()
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// RegisterCSV registers the CSV file at csvPath as a queryable table. The
// first record is the header; every column gets REAL affinity. Empty cells
// become NULL; cells that do not parse as numbers are stored verbatim and
// surface later during coercion. Returns the number of rows loaded.
func (e *Engine) RegisterCSV(ctx context.Context, tableName, csvPath string) (int64, error) {
	if !identifierPattern.MatchString(tableName) {
		return 0, errors.NewValidationError("tableName", "must be a bare SQL identifier", tableName)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return 0, errors.Wrapf(err, "dataset.RegisterCSV: open %s", csvPath)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return 0, errors.Wrapf(err, "dataset.RegisterCSV: read header of %s", csvPath)
	}
	for _, col := range header {
		if !identifierPattern.MatchString(col) {
			return 0, errors.NewValidationError("column", "must be a bare SQL identifier", col)
		}
	}

	createStmt := fmt.Sprintf("CREATE TABLE %s (", tableName)
	insertStmt := fmt.Sprintf("INSERT INTO %s VALUES (", tableName)
	for i, col := range header {
		if i > 0 {
			createStmt += ", "
			insertStmt += ", "
		}
		createStmt += col + " REAL"
		insertStmt += "?"
	}
	createStmt += ")"
	insertStmt += ")"

	if _, err := e.db.ExecContext(ctx, createStmt); err != nil {
		return 0, errors.NewQueryError("dataset.RegisterCSV", createStmt, err)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewQueryError("dataset.RegisterCSV", "BEGIN", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		return 0, errors.NewQueryError("dataset.RegisterCSV", insertStmt, err)
	}
	defer stmt.Close()

	var nRows int64
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, "dataset.RegisterCSV: read row %d", nRows+1)
		}
		if len(record) != len(header) {
			return 0, errors.NewDimensionError("dataset.RegisterCSV", len(header), len(record), 1)
		}

		args := make([]any, len(record))
		for i, cell := range record {
			if cell == "" {
				args[i] = nil
				continue
			}
			if v, perr := strconv.ParseFloat(cell, 64); perr == nil {
				args[i] = v
			} else {
				args[i] = cell
			}
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, errors.NewQueryError("dataset.RegisterCSV", insertStmt, err)
		}
		nRows++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewQueryError("dataset.RegisterCSV", "COMMIT", err)
	}

	e.logger.Info("registered table",
		log.TableKey, tableName,
		log.SamplesKey, nRows,
		log.FeaturesKey, len(header),
	)
	return nRows, nil
}

// Query runs an arbitrary SELECT and materializes the result as a Table.
// Numeric representations are coerced to float64 during the scan: integers
// convert silently, NULLs become 0 with a DataConversionWarning, and text
// cells must parse as numbers or the query fails.
func (e *Engine) Query(ctx context.Context, query string) (*Table, error) {
	start := time.Now()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryError("Engine.Query", query, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, errors.NewQueryError("Engine.Query", query, err)
	}

	columns := make([][]float64, len(names))
	raw := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	warned := make(map[string]bool)
	nRows := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.NewQueryError("Engine.Query", query, err)
		}
		for i, v := range raw {
			f, err := coerceCell(names[i], v, warned)
			if err != nil {
				return nil, err
			}
			columns[i] = append(columns[i], f)
		}
		nRows++
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryError("Engine.Query", query, err)
	}
	if nRows == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Engine.Query")
	}

	e.logger.Debug("query materialized",
		log.QueryKey, query,
		log.SamplesKey, nRows,
		log.FeaturesKey, len(names),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return &Table{names: names, columns: columns, nRows: nRows}, nil
}

// coerceCell converts a scanned SQL value to float64. The warned map
// deduplicates conversion warnings per column.
func coerceCell(column string, v any, warned map[string]bool) (float64, error) {
	switch val := v.(type) {
	case nil:
		if !warned[column+":null"] {
			warned[column+":null"] = true
			errors.Warn(errors.NewDataConversionWarning("NULL", "float64",
				fmt.Sprintf("NULL in column %q scanned as 0", column)))
		}
		return 0, nil
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return coerceText(column, string(val), warned)
	case string:
		return coerceText(column, val, warned)
	default:
		return 0, errors.NewValueError("Engine.Query",
			fmt.Sprintf("column %q: cannot coerce %T to float64", column, v))
	}
}

func coerceText(column, s string, warned map[string]bool) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewValueError("Engine.Query",
			fmt.Sprintf("column %q: cannot coerce %q to float64", column, s))
	}
	if !warned[column+":text"] {
		warned[column+":text"] = true
		errors.Warn(errors.NewDataConversionWarning("text", "float64",
			fmt.Sprintf("text values in column %q parsed as numbers", column)))
	}
	return f, nil
}
