package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// PostgresStore backend Postgres: uma tabela única chave -> payload JSONB.
// O serviço continua escritor único; o banco entra só como durabilidade.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStore garante a tabela de coleções na subida.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) (*PostgresStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS greenstock_collections (
			key     TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create collections table: %w", err)
	}
	logger.Info("Postgres store inicializado")
	return &PostgresStore{db: db, logger: logger}, nil
}

func (p *PostgresStore) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM greenstock_collections WHERE key = $1`, key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s from postgres: %w", key, err)
	}
	return payload, nil
}

func (p *PostgresStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO greenstock_collections (key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to save %s to postgres: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
