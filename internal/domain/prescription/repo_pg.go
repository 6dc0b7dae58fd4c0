package prescription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/nutrition/internal/domain/nutrition"
	"github.com/ehr/nutrition/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const rxCols = `id, patient_id, status, draft, patient, result, created_at, updated_at`

// documents holds the JSONB columns of a row.
type documents struct {
	draft, patient, result []byte
}

func encode(rx *Prescription) (documents, error) {
	var d documents
	var err error
	if d.draft, err = json.Marshal(rx.Draft); err != nil {
		return d, fmt.Errorf("encode draft: %w", err)
	}
	if d.patient, err = json.Marshal(rx.Patient); err != nil {
		return d, fmt.Errorf("encode patient: %w", err)
	}
	if rx.Result != nil {
		if d.result, err = json.Marshal(rx.Result); err != nil {
			return d, fmt.Errorf("encode result: %w", err)
		}
	}
	return d, nil
}

func (r *repoPG) Create(ctx context.Context, rx *Prescription) error {
	rx.ID = uuid.New()
	now := time.Now().UTC()
	rx.CreatedAt, rx.UpdatedAt = now, now
	docs, err := encode(rx)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO nutrition_prescription (`+rxCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rx.ID, rx.PatientID, rx.Status, docs.draft, docs.patient, docs.result, rx.CreatedAt, rx.UpdatedAt,
	)
	return err
}

// GetByID locks the row when called inside a transaction.
func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	q := `SELECT ` + rxCols + ` FROM nutrition_prescription WHERE id = $1`
	if db.TxFromContext(ctx) != nil {
		q += ` FOR UPDATE`
	}
	return scanRx(r.conn(ctx).QueryRow(ctx, q, id))
}

func (r *repoPG) Update(ctx context.Context, rx *Prescription) error {
	rx.UpdatedAt = time.Now().UTC()
	docs, err := encode(rx)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE nutrition_prescription SET
			patient_id=$2, status=$3, draft=$4, patient=$5, result=$6, updated_at=$7
		WHERE id = $1`,
		rx.ID, rx.PatientID, rx.Status, docs.draft, docs.patient, docs.result, rx.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM nutrition_prescription WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+rxCols+` FROM nutrition_prescription WHERE patient_id = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	items := []*Prescription{}
	for rows.Next() {
		rx, err := scanRx(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rx)
	}
	return items, total, rows.Err()
}

func scanRx(row pgx.Row) (*Prescription, error) {
	var rx Prescription
	var docs documents
	if err := row.Scan(&rx.ID, &rx.PatientID, &rx.Status, &docs.draft, &docs.patient, &docs.result,
		&rx.CreatedAt, &rx.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(docs.draft, &rx.Draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", rx.ID, err)
	}
	if err := json.Unmarshal(docs.patient, &rx.Patient); err != nil {
		return nil, fmt.Errorf("decode patient %s: %w", rx.ID, err)
	}
	if len(docs.result) > 0 {
		rx.Result = &nutrition.Result{}
		if err := json.Unmarshal(docs.result, rx.Result); err != nil {
			return nil, fmt.Errorf("decode result %s: %w", rx.ID, err)
		}
	}
	return &rx, nil
}
