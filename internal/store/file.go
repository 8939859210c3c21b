package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileStore backend padrão: um arquivo <chave>.json por coleção dentro do
// diretório de dados. Suficiente para uma instalação de máquina única, sem
// dependência externa.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore cria o diretório de dados se necessário.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	logger.Info("File store inicializado", zap.String("dir", dir))
	return &FileStore{dir: dir, logger: logger}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Load lê a coleção; chave inexistente retorna vazio, não erro.
func (f *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Save grava via arquivo temporário + rename para nunca deixar uma coleção
// meio escrita no disco.
func (f *FileStore) Save(_ context.Context, key string, data []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, f.path(key)); err != nil {
		return fmt.Errorf("failed to rename %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }
