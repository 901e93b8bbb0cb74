package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"propharvest/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// SaveDataset persists the dataset header and its listing rows in one
// transaction. Row order is kept via an explicit ordinal.
func (r *Repo) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	sites, _ := json.Marshal(ds.Sites)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertDatasetSQL,
		ds.ID, ds.Location, string(ds.ListingType), string(sites), len(ds.Table.Rows),
	); err != nil {
		return err
	}

	// Re-saving a dataset replaces its rows rather than appending.
	if _, err := tx.ExecContext(ctx, deleteListingsSQL, ds.ID); err != nil {
		return err
	}

	if len(ds.Table.Rows) > 0 {
		// Map the table's columns onto the listings schema once.
		idx := make([]int, len(domain.Columns()))
		for i, col := range domain.Columns() {
			idx[i] = ds.Table.ColumnIndex(col)
		}

		const perRow = 2 + 29 // dataset_id, ord + canonical columns
		values := make([]string, 0, len(ds.Table.Rows))
		args := make([]any, 0, len(ds.Table.Rows)*perRow)
		for ord, row := range ds.Table.Rows {
			values = append(values, "("+strings.TrimSuffix(strings.Repeat("?,", perRow), ",")+")")
			args = append(args, ds.ID, ord)
			for _, i := range idx {
				if i < 0 || row[i] == nil {
					args = append(args, nil)
					continue
				}
				args = append(args, row[i])
			}
		}
		stmt := insertListingsPrefix + strings.Join(values, ",")
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repo) GetDataset(ctx context.Context, id string) (domain.Dataset, error) {
	row := r.db.QueryRowContext(ctx, getDatasetSQL, id)
	ds, err := scanDataset(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Dataset{}, domain.ErrNotFound
		}
		return domain.Dataset{}, err
	}

	rows, err := r.db.QueryContext(ctx, getListingsSQL, id)
	if err != nil {
		return domain.Dataset{}, err
	}
	defer rows.Close()

	t := domain.Table{Columns: domain.Columns()}
	for rows.Next() {
		// The SELECT column order matches domain.Columns().
		cells, err := scanListingRow(rows)
		if err != nil {
			return domain.Dataset{}, err
		}
		t.Rows = append(t.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return domain.Dataset{}, err
	}
	ds.Table = t
	return ds, nil
}

func (r *Repo) ListDatasets(ctx context.Context, limit int) ([]domain.Dataset, error) {
	rows, err := r.db.QueryContext(ctx, listDatasetsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanDataset(row rowScanner) (domain.Dataset, error) {
	var ds domain.Dataset
	var lt string
	var sitesJSON []byte
	if err := row.Scan(&ds.ID, &ds.Location, &lt, &sitesJSON, &ds.RowCount, &ds.CreatedAt); err != nil {
		return domain.Dataset{}, err
	}
	ds.ListingType = domain.ListingType(lt)
	_ = json.Unmarshal(sitesJSON, &ds.Sites)
	return ds, nil
}

// listingColKinds mirrors the canonical column order: s = text, f = float,
// i = int.
var listingColKinds = []byte("sssssffffffsiissssffssssssssi")

func scanListingRow(rows *sql.Rows) ([]any, error) {
	cols := domain.Columns()
	strs := make([]sql.NullString, len(cols))
	f64s := make([]sql.NullFloat64, len(cols))
	ints := make([]sql.NullInt64, len(cols))

	dest := make([]any, len(cols))
	for i := range cols {
		switch listingColKinds[i] {
		case 'f':
			dest[i] = &f64s[i]
		case 'i':
			dest[i] = &ints[i]
		default:
			dest[i] = &strs[i]
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	cells := make([]any, len(cols))
	for i := range cols {
		switch listingColKinds[i] {
		case 'f':
			if f64s[i].Valid {
				cells[i] = f64s[i].Float64
			}
		case 'i':
			if ints[i].Valid {
				cells[i] = int(ints[i].Int64)
			}
		default:
			if strs[i].Valid {
				cells[i] = strs[i].String
			}
		}
	}
	return cells, nil
}
