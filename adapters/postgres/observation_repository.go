package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carevisits/domain/survey"
	apperrors "carevisits/internal/errors"
	"carevisits/ports"

	"github.com/jmoiron/sqlx"
)

// observationRepository loads and stores tidy survey rows in Postgres.
type observationRepository struct {
	db    *sqlx.DB
	table string
}

// NewObservationRepository creates a new observation repository over the
// named table.
func NewObservationRepository(db *sqlx.DB, table string) ports.ObservationStore {
	if table == "" {
		table = "observations"
	}
	return &observationRepository{db: db, table: table}
}

// EnsureSchema creates the observations table when it does not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB, table string) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		visits INTEGER,
		depression TEXT,
		chronic TEXT,
		heart_attack TEXT,
		angina_or_chd TEXT,
		stroke TEXT,
		asthma TEXT,
		skin_cancer TEXT,
		other_cancer TEXT,
		copd TEXT,
		arthritis TEXT,
		diabetes TEXT,
		kidney_disease TEXT
	)`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("failed to create %s table", table)).WithCause(err)
	}
	return nil
}

// observationRow mirrors the table schema with nullable columns.
type observationRow struct {
	Visits        sql.NullInt64  `db:"visits"`
	Depression    sql.NullString `db:"depression"`
	Chronic       sql.NullString `db:"chronic"`
	HeartAttack   sql.NullString `db:"heart_attack"`
	AnginaOrCHD   sql.NullString `db:"angina_or_chd"`
	Stroke        sql.NullString `db:"stroke"`
	Asthma        sql.NullString `db:"asthma"`
	SkinCancer    sql.NullString `db:"skin_cancer"`
	OtherCancer   sql.NullString `db:"other_cancer"`
	COPD          sql.NullString `db:"copd"`
	Arthritis     sql.NullString `db:"arthritis"`
	Diabetes      sql.NullString `db:"diabetes"`
	KidneyDisease sql.NullString `db:"kidney_disease"`
}

// LoadObservations reads every row in insertion order.
func (r *observationRepository) LoadObservations(ctx context.Context) (survey.Table, error) {
	query := fmt.Sprintf(`SELECT
		visits, depression, chronic, heart_attack, angina_or_chd, stroke,
		asthma, skin_cancer, other_cancer, copd, arthritis, diabetes, kidney_disease
	FROM %s ORDER BY id`, r.table)

	var rows []observationRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, apperrors.DatabaseError("failed to load observations").WithCause(err)
	}

	table := make(survey.Table, 0, len(rows))
	for _, row := range rows {
		table = append(table, row.toDomain())
	}
	return table, nil
}

// SaveObservations appends the given rows.
func (r *observationRepository) SaveObservations(ctx context.Context, rows survey.Table) error {
	query := fmt.Sprintf(`INSERT INTO %s (
		visits, depression, chronic, heart_attack, angina_or_chd, stroke,
		asthma, skin_cancer, other_cancer, copd, arthritis, diabetes, kidney_disease
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, r.table)

	for _, o := range rows {
		_, err := r.db.ExecContext(ctx, query,
			nullVisits(o.Visits), nullYesNo(o.Depression), nullYesNo(o.Chronic),
			nullYesNo(o.HeartAttack), nullYesNo(o.AnginaOrCHD), nullYesNo(o.Stroke),
			nullYesNo(o.Asthma), nullYesNo(o.SkinCancer), nullYesNo(o.OtherCancer),
			nullYesNo(o.COPD), nullYesNo(o.Arthritis), nullYesNo(o.Diabetes),
			nullYesNo(o.KidneyDisease),
		)
		if err != nil {
			return apperrors.DatabaseError("failed to insert observation").WithCause(err)
		}
	}
	return nil
}

func (row observationRow) toDomain() survey.Observation {
	o := survey.Observation{
		Depression:    yesNo(row.Depression),
		Chronic:       yesNo(row.Chronic),
		HeartAttack:   yesNo(row.HeartAttack),
		AnginaOrCHD:   yesNo(row.AnginaOrCHD),
		Stroke:        yesNo(row.Stroke),
		Asthma:        yesNo(row.Asthma),
		SkinCancer:    yesNo(row.SkinCancer),
		OtherCancer:   yesNo(row.OtherCancer),
		COPD:          yesNo(row.COPD),
		Arthritis:     yesNo(row.Arthritis),
		Diabetes:      yesNo(row.Diabetes),
		KidneyDisease: yesNo(row.KidneyDisease),
	}
	if row.Visits.Valid && row.Visits.Int64 >= 0 {
		v := int(row.Visits.Int64)
		o.Visits = &v
	}
	return o
}

func yesNo(s sql.NullString) survey.YesNo {
	if !s.Valid {
		return ""
	}
	return survey.ParseYesNo(s.String)
}

func nullYesNo(v survey.YesNo) sql.NullString {
	if !v.Present() {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullVisits(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
