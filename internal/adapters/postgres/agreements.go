package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"baatrack/internal/domain"
)

const agreementColumns = `
    id, name, type, counterparty, effective_date, expiration_date,
    status, signature_status, breach_notification, audit_rights,
    subcontractor_approval, data_retention, termination_notice,
    current_version, email_alerts, extraction_confidence, extraction_method
`

// Create inserts the agreement row and its initial version atomically.
func (db *DB) Create(ctx context.Context, ag domain.Agreement) error {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	var confidence *int
	var method *string
	if ag.Extracted != nil {
		confidence = &ag.Extracted.Confidence
		method = &ag.Extracted.Method
	}
	if _, err = tx.Exec(ctx, `
        INSERT INTO agreements (`+agreementColumns+`)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
    `, ag.ID, ag.Name, ag.Type, ag.Counterparty, ag.EffectiveDate, ag.ExpirationDate,
		ag.Status, ag.Signature, ag.BreachNotification, ag.Terms.AuditRights,
		ag.Terms.SubcontractorApproval, ag.Terms.DataRetention, ag.Terms.TerminationNotice,
		ag.CurrentVersion, ag.EmailAlerts, confidence, method); err != nil {
		return err
	}
	for _, v := range ag.Versions {
		if err = insertVersion(ctx, tx, ag.ID, v); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites the agreement row, records the newest version entry, and
// bumps current_version in one transaction.
func (db *DB) Update(ctx context.Context, ag domain.Agreement) error {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
        UPDATE agreements SET
            name=$2, type=$3, counterparty=$4, effective_date=$5, expiration_date=$6,
            status=$7, signature_status=$8, breach_notification=$9, audit_rights=$10,
            subcontractor_approval=$11, data_retention=$12, termination_notice=$13,
            current_version=$14, email_alerts=$15, updated_at=now()
        WHERE id=$1 AND deleted_at IS NULL
    `, ag.ID, ag.Name, ag.Type, ag.Counterparty, ag.EffectiveDate, ag.ExpirationDate,
		ag.Status, ag.Signature, ag.BreachNotification, ag.Terms.AuditRights,
		ag.Terms.SubcontractorApproval, ag.Terms.DataRetention, ag.Terms.TerminationNotice,
		ag.CurrentVersion, ag.EmailAlerts)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = ErrNotFound
		return err
	}
	if n := len(ag.Versions); n > 0 {
		if err = insertVersion(ctx, tx, ag.ID, ag.Versions[n-1]); err != nil {
			return err
		}
	}
	return nil
}

func insertVersion(ctx context.Context, tx pgx.Tx, agreementID string, v domain.Version) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO agreement_versions (agreement_id, number, date, author, changes)
        VALUES ($1, $2, $3, $4, $5)
    `, agreementID, v.Number, v.Date, v.Author, v.Changes)
	return err
}

func (db *DB) Get(ctx context.Context, id string) (domain.Agreement, error) {
	row := db.Pool.QueryRow(ctx, `
        SELECT `+agreementColumns+`
        FROM agreements WHERE id=$1 AND deleted_at IS NULL
    `, id)
	ag, err := scanAgreement(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Agreement{}, ErrNotFound
	}
	if err != nil {
		return domain.Agreement{}, err
	}
	ag.Versions, err = db.versionsFor(ctx, id)
	return ag, err
}

func (db *DB) List(ctx context.Context) ([]domain.Agreement, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+agreementColumns+`
        FROM agreements WHERE deleted_at IS NULL
        ORDER BY created_at, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Agreement
	index := map[string]int{}
	for rows.Next() {
		ag, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		index[ag.ID] = len(out)
		out = append(out, ag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	vrows, err := db.Pool.Query(ctx, `
        SELECT v.agreement_id, v.number, v.date, v.author, v.changes
        FROM agreement_versions v
        JOIN agreements a ON a.id = v.agreement_id
        WHERE a.deleted_at IS NULL
        ORDER BY v.agreement_id, v.number
    `)
	if err != nil {
		return nil, err
	}
	defer vrows.Close()
	for vrows.Next() {
		var agreementID string
		var v domain.Version
		if err := vrows.Scan(&agreementID, &v.Number, &v.Date, &v.Author, &v.Changes); err != nil {
			return nil, err
		}
		if i, ok := index[agreementID]; ok {
			out[i].Versions = append(out[i].Versions, v)
		}
	}
	return out, vrows.Err()
}

func (db *DB) SoftDelete(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `
        UPDATE agreements SET deleted_at=now() WHERE id=$1 AND deleted_at IS NULL
    `, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExpiring returns active, alert-enabled agreements expiring on or before
// the horizon. Versions are not loaded; the alerter does not need them.
func (db *DB) ListExpiring(ctx context.Context, horizon time.Time) ([]domain.Agreement, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT `+agreementColumns+`
        FROM agreements
        WHERE deleted_at IS NULL AND email_alerts AND status='active'
          AND expiration_date <= $1
        ORDER BY expiration_date, id
    `, horizon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Agreement
	for rows.Next() {
		ag, err := scanAgreement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ag)
	}
	return out, rows.Err()
}

func (db *DB) versionsFor(ctx context.Context, agreementID string) ([]domain.Version, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT number, date, author, changes
        FROM agreement_versions WHERE agreement_id=$1
        ORDER BY number
    `, agreementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Version
	for rows.Next() {
		var v domain.Version
		if err := rows.Scan(&v.Number, &v.Date, &v.Author, &v.Changes); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanAgreement(row pgx.Row) (domain.Agreement, error) {
	var ag domain.Agreement
	var confidence *int
	var method *string
	err := row.Scan(
		&ag.ID, &ag.Name, &ag.Type, &ag.Counterparty, &ag.EffectiveDate, &ag.ExpirationDate,
		&ag.Status, &ag.Signature, &ag.BreachNotification, &ag.Terms.AuditRights,
		&ag.Terms.SubcontractorApproval, &ag.Terms.DataRetention, &ag.Terms.TerminationNotice,
		&ag.CurrentVersion, &ag.EmailAlerts, &confidence, &method,
	)
	if err != nil {
		return ag, err
	}
	ag.Terms.BreachNotificationHours = ag.BreachNotification
	if confidence != nil || method != nil {
		ag.Extracted = &domain.ExtractedData{}
		if confidence != nil {
			ag.Extracted.Confidence = *confidence
		}
		if method != nil {
			ag.Extracted.Method = *method
		}
	}
	return ag, nil
}
