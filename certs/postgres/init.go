// Copyright (c) P2PPSR
// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // required for SQL access
	migrate "github.com/rubenv/sql-migrate"
)

// Migration returns the certifier schema migrations. The settings singleton
// is created by the initial migration and records the chain the certifier
// was initialized on.
func Migration(chain string) migrate.MemoryMigrationSource {
	return migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "certifier_01",
				// VARCHAR(66) for identity keys: compressed secp256k1 public keys in hex
				Up: []string{
					`CREATE TABLE IF NOT EXISTS certificates (
						certificate_id		BIGSERIAL PRIMARY KEY,
						serial_number		TEXT NOT NULL,
						type				TEXT NOT NULL,
						certifier			VARCHAR(66) NOT NULL,
						subject				VARCHAR(66) NOT NULL,
						verifier			VARCHAR(66),
						revocation_outpoint	TEXT NOT NULL,
						signature			TEXT NOT NULL,
						created_at			TIMESTAMP NOT NULL,
						updated_at			TIMESTAMP,
						UNIQUE (subject, type, certifier, serial_number)
					)`,
					`CREATE TABLE IF NOT EXISTS certificate_fields (
						certificate_id		BIGINT NOT NULL REFERENCES certificates (certificate_id) ON DELETE CASCADE,
						field_name			VARCHAR(50) NOT NULL,
						field_value			TEXT NOT NULL,
						master_key			TEXT NOT NULL,
						created_at			TIMESTAMP NOT NULL,
						updated_at			TIMESTAMP,
						UNIQUE (field_name, certificate_id)
					)`,
					`CREATE TABLE IF NOT EXISTS settings (
						chain				VARCHAR(10) NOT NULL,
						created_at			TIMESTAMP NOT NULL,
						updated_at			TIMESTAMP
					)`,
					fmt.Sprintf(`INSERT INTO settings (chain, created_at)
						SELECT '%s', NOW()
						WHERE NOT EXISTS (SELECT 1 FROM settings)`, chain),
				},
				Down: []string{
					`DROP TABLE IF EXISTS certificate_fields`,
					`DROP TABLE IF EXISTS certificates`,
					`DROP TABLE IF EXISTS settings`,
				},
			},
			{
				Id: "certifier_02_add_revocation_txid",
				Up: []string{
					`ALTER TABLE certificates
					 ADD COLUMN revocation_txid VARCHAR(64)`,
				},
				Down: []string{
					`ALTER TABLE certificates
					 DROP COLUMN revocation_txid`,
				},
			},
		},
	}
}
