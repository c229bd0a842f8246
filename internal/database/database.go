// Package database conserve les instantanés du tableau et l'historique des
// rechargements dans une base SQLite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store accès à la base SQLite
type Store struct {
	db *sql.DB
}

// Open ouvre (ou crée) la base et applique les migrations
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Un seul écrivain à la fois avec SQLite
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// DB connexion sous-jacente
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close ferme la base
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Transaction exécute fn dans une transaction, annulée en cas d'erreur
func (s *Store) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
