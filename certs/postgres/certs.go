// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/p2ppsr/generic-certifier-backend/certs"
	"github.com/p2ppsr/generic-certifier-backend/pkg/errors"
	repoerr "github.com/p2ppsr/generic-certifier-backend/pkg/errors/repository"
	"github.com/p2ppsr/generic-certifier-backend/pkg/postgres"
)

var _ certs.Repository = (*repository)(nil)

type repository struct {
	db postgres.Database
}

// NewRepository returns a PostgreSQL certificate repository.
func NewRepository(db postgres.Database) certs.Repository {
	return &repository{db: db}
}

func (repo *repository) Save(ctx context.Context, cert certs.Certificate, fields []certs.CertificateField) (uint64, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(repoerr.ErrCreateEntity, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	q := `INSERT INTO certificates (serial_number, type, certifier, subject, verifier, revocation_outpoint, signature, created_at)
		VALUES (:serial_number, :type, :certifier, :subject, :verifier, :revocation_outpoint, :signature, :created_at)
		RETURNING certificate_id;`

	dbc := toDBCertificate(cert)
	dbc.CreatedAt = time.Now()

	rows, err := sqlx.NamedQueryContext(ctx, tx, q, dbc)
	if err != nil {
		return 0, postgres.HandleError(repoerr.ErrCreateEntity, err)
	}
	var id uint64
	if rows.Next() {
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return 0, postgres.HandleError(repoerr.ErrCreateEntity, err)
		}
	}
	rows.Close()

	fq := `INSERT INTO certificate_fields (certificate_id, field_name, field_value, master_key, created_at)
		VALUES (:certificate_id, :field_name, :field_value, :master_key, :created_at);`

	for _, field := range fields {
		dbf := dbCertificateField{
			CertificateID: id,
			FieldName:     field.FieldName,
			FieldValue:    field.FieldValue,
			MasterKey:     field.MasterKey,
			CreatedAt:     dbc.CreatedAt,
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, fq, dbf); err != nil {
			return 0, postgres.HandleError(repoerr.ErrCreateEntity, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, postgres.HandleError(repoerr.ErrCreateEntity, err)
	}

	return id, nil
}

func (repo *repository) Update(ctx context.Context, id uint64, patch certs.CertificatePatch) error {
	var set []string
	params := map[string]interface{}{
		"certificate_id": id,
		"updated_at":     time.Now(),
	}
	if patch.Verifier != nil {
		set = append(set, "verifier = :verifier")
		params["verifier"] = *patch.Verifier
	}
	if patch.RevocationOutpoint != nil {
		set = append(set, "revocation_outpoint = :revocation_outpoint")
		params["revocation_outpoint"] = *patch.RevocationOutpoint
	}
	if patch.RevocationTxID != nil {
		set = append(set, "revocation_txid = :revocation_txid")
		params["revocation_txid"] = *patch.RevocationTxID
	}
	if len(set) == 0 {
		return nil
	}

	q := fmt.Sprintf(`UPDATE certificates SET %s, updated_at = :updated_at
		WHERE certificate_id = :certificate_id;`, strings.Join(set, ", "))

	res, err := repo.db.NamedExecContext(ctx, q, params)
	if err != nil {
		return postgres.HandleError(repoerr.ErrUpdateEntity, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return repoerr.ErrNotFound
	}

	return nil
}

func (repo *repository) UpdateField(ctx context.Context, id uint64, fieldName string, patch certs.FieldPatch) error {
	var set []string
	params := map[string]interface{}{
		"certificate_id": id,
		"field_name":     fieldName,
		"updated_at":     time.Now(),
	}
	if patch.FieldValue != nil {
		set = append(set, "field_value = :field_value")
		params["field_value"] = *patch.FieldValue
	}
	if patch.MasterKey != nil {
		set = append(set, "master_key = :master_key")
		params["master_key"] = *patch.MasterKey
	}
	if len(set) == 0 {
		return nil
	}

	q := fmt.Sprintf(`UPDATE certificate_fields SET %s, updated_at = :updated_at
		WHERE certificate_id = :certificate_id AND field_name = :field_name;`, strings.Join(set, ", "))

	res, err := repo.db.NamedExecContext(ctx, q, params)
	if err != nil {
		return postgres.HandleError(repoerr.ErrUpdateEntity, err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return repoerr.ErrNotFound
	}

	return nil
}

func (repo *repository) RetrieveAll(ctx context.Context, pm certs.PageMetadata) (certs.CertificatePage, error) {
	query := pageQuery(pm)
	q := fmt.Sprintf(`SELECT certificate_id, serial_number, type, certifier, subject, verifier,
		revocation_outpoint, signature, revocation_txid, created_at, updated_at
		FROM certificates %s ORDER BY created_at LIMIT :limit OFFSET :offset;`, query)

	rows, err := repo.db.NamedQueryContext(ctx, q, pm)
	if err != nil {
		return certs.CertificatePage{}, postgres.HandleError(repoerr.ErrViewEntity, err)
	}
	defer rows.Close()

	var items []certs.Certificate
	for rows.Next() {
		var dbc dbCertificate
		if err := rows.StructScan(&dbc); err != nil {
			return certs.CertificatePage{}, postgres.HandleError(repoerr.ErrViewEntity, err)
		}
		items = append(items, toCertificate(dbc))
	}

	for i := range items {
		fields, err := repo.RetrieveFields(ctx, items[i].ID)
		if err != nil {
			return certs.CertificatePage{}, err
		}
		attachFields(&items[i], fields)
	}

	tq := fmt.Sprintf(`SELECT COUNT(*) FROM certificates %s;`, query)
	total, err := postgres.Total(ctx, repo.db, tq, pm)
	if err != nil {
		return certs.CertificatePage{}, postgres.HandleError(repoerr.ErrViewEntity, err)
	}

	return certs.CertificatePage{
		Total:        total,
		Offset:       pm.Offset,
		Limit:        pm.Limit,
		Certificates: items,
	}, nil
}

func (repo *repository) RetrieveBySerial(ctx context.Context, certifier, serialNumber string) (certs.Certificate, error) {
	q := `SELECT certificate_id, serial_number, type, certifier, subject, verifier,
		revocation_outpoint, signature, revocation_txid, created_at, updated_at
		FROM certificates WHERE certifier = :certifier AND serial_number = :serial_number;`

	params := map[string]interface{}{
		"certifier":     certifier,
		"serial_number": serialNumber,
	}

	rows, err := repo.db.NamedQueryContext(ctx, q, params)
	if err != nil {
		return certs.Certificate{}, postgres.HandleError(repoerr.ErrViewEntity, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return certs.Certificate{}, repoerr.ErrNotFound
	}
	var dbc dbCertificate
	if err := rows.StructScan(&dbc); err != nil {
		return certs.Certificate{}, postgres.HandleError(repoerr.ErrViewEntity, err)
	}

	cert := toCertificate(dbc)
	fields, err := repo.RetrieveFields(ctx, cert.ID)
	if err != nil {
		return certs.Certificate{}, err
	}
	attachFields(&cert, fields)

	return cert, nil
}

func (repo *repository) RetrieveFields(ctx context.Context, id uint64) ([]certs.CertificateField, error) {
	q := `SELECT certificate_id, field_name, field_value, master_key, created_at, updated_at
		FROM certificate_fields WHERE certificate_id = :certificate_id ORDER BY field_name;`

	rows, err := repo.db.NamedQueryContext(ctx, q, map[string]interface{}{"certificate_id": id})
	if err != nil {
		return nil, postgres.HandleError(repoerr.ErrViewEntity, err)
	}
	defer rows.Close()

	var fields []certs.CertificateField
	for rows.Next() {
		var dbf dbCertificateField
		if err := rows.StructScan(&dbf); err != nil {
			return nil, postgres.HandleError(repoerr.ErrViewEntity, err)
		}
		fields = append(fields, certs.CertificateField{
			CertificateID: dbf.CertificateID,
			FieldName:     dbf.FieldName,
			FieldValue:    dbf.FieldValue,
			MasterKey:     dbf.MasterKey,
			CreatedAt:     dbf.CreatedAt,
			UpdatedAt:     dbf.UpdatedAt.Time,
		})
	}

	return fields, nil
}

func (repo *repository) RetrieveSettings(ctx context.Context) (certs.Settings, error) {
	q := `SELECT chain, created_at, updated_at FROM settings;`

	rows, err := repo.db.QueryxContext(ctx, q)
	if err != nil {
		return certs.Settings{}, postgres.HandleError(repoerr.ErrViewEntity, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return certs.Settings{}, repoerr.ErrNotFound
	}
	var dbs dbSettings
	if err := rows.StructScan(&dbs); err != nil {
		return certs.Settings{}, postgres.HandleError(repoerr.ErrViewEntity, err)
	}

	return certs.Settings{
		Chain:     dbs.Chain,
		CreatedAt: dbs.CreatedAt,
		UpdatedAt: dbs.UpdatedAt.Time,
	}, nil
}

func pageQuery(pm certs.PageMetadata) string {
	var query []string
	if pm.Subject != "" {
		query = append(query, "subject = :subject")
	}
	if pm.Type != "" {
		query = append(query, "type = :type")
	}
	if pm.Certifier != "" {
		query = append(query, "certifier = :certifier")
	}
	if pm.SerialNumber != "" {
		query = append(query, "serial_number = :serial_number")
	}

	if len(query) > 0 {
		return fmt.Sprintf("WHERE %s", strings.Join(query, " AND "))
	}

	return ""
}

type dbCertificate struct {
	ID                 uint64         `db:"certificate_id"`
	SerialNumber       string         `db:"serial_number"`
	Type               string         `db:"type"`
	Certifier          string         `db:"certifier"`
	Subject            string         `db:"subject"`
	Verifier           sql.NullString `db:"verifier"`
	RevocationOutpoint string         `db:"revocation_outpoint"`
	Signature          string         `db:"signature"`
	RevocationTxID     sql.NullString `db:"revocation_txid"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          sql.NullTime   `db:"updated_at"`
}

type dbCertificateField struct {
	CertificateID uint64       `db:"certificate_id"`
	FieldName     string       `db:"field_name"`
	FieldValue    string       `db:"field_value"`
	MasterKey     string       `db:"master_key"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     sql.NullTime `db:"updated_at"`
}

type dbSettings struct {
	Chain     string       `db:"chain"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt sql.NullTime `db:"updated_at"`
}

func toDBCertificate(cert certs.Certificate) dbCertificate {
	return dbCertificate{
		ID:                 cert.ID,
		SerialNumber:       cert.SerialNumber,
		Type:               cert.Type,
		Certifier:          cert.Certifier,
		Subject:            cert.Subject,
		Verifier:           sql.NullString{String: cert.Verifier, Valid: cert.Verifier != ""},
		RevocationOutpoint: cert.RevocationOutpoint,
		Signature:          cert.Signature,
		RevocationTxID:     sql.NullString{String: cert.RevocationTxID, Valid: cert.RevocationTxID != ""},
		CreatedAt:          cert.CreatedAt,
	}
}

func toCertificate(dbc dbCertificate) certs.Certificate {
	return certs.Certificate{
		ID:                 dbc.ID,
		SerialNumber:       dbc.SerialNumber,
		Type:               dbc.Type,
		Certifier:          dbc.Certifier,
		Subject:            dbc.Subject,
		Verifier:           dbc.Verifier.String,
		RevocationOutpoint: dbc.RevocationOutpoint,
		Signature:          dbc.Signature,
		RevocationTxID:     dbc.RevocationTxID.String,
		CreatedAt:          dbc.CreatedAt,
		UpdatedAt:          dbc.UpdatedAt.Time,
	}
}

func attachFields(cert *certs.Certificate, fields []certs.CertificateField) {
	cert.Fields = make(map[string]string, len(fields))
	for _, field := range fields {
		cert.Fields[field.FieldName] = field.FieldValue
	}
}
