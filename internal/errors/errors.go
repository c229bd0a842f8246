// Package errors définit la taxonomie des erreurs de chargement.
// Chaque type supporte errors.Is sur sa sentinelle pour que les appelants
// puissent distinguer une panne réseau d'une feuille mal formée.
package errors

import (
	"errors"
	"fmt"
)

// New alias de errors.New
var New = errors.New

// Is alias de errors.Is
var Is = errors.Is

// As alias de errors.As
var As = errors.As

var (
	// ErrTransport la récupération d'une feuille a échoué ou la réponse est invalide
	ErrTransport = errors.New("transport error")

	// ErrSchema une colonne obligatoire est introuvable
	ErrSchema = errors.New("schema error")

	// ErrConfig configuration invalide
	ErrConfig = errors.New("configuration error")

	// ErrNoDataset aucun jeu de données n'a encore été publié
	ErrNoDataset = errors.New("no dataset loaded")
)

// TransportError échec de récupération d'une feuille
type TransportError struct {
	Table string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to load sheet %q: %v", e.Table, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// NewTransportError crée une TransportError
func NewTransportError(table string, err error) *TransportError {
	return &TransportError{Table: table, Err: err}
}

// SchemaError colonne obligatoire introuvable dans une feuille
type SchemaError struct {
	Table   string
	Column  string
	Keyword string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("could not find required %s column %q (keyword %q)", e.Table, e.Column, e.Keyword)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// NewSchemaError crée une SchemaError
func NewSchemaError(table, column, keyword string) *SchemaError {
	return &SchemaError{Table: table, Column: column, Keyword: keyword}
}

// ConfigError valeur de configuration invalide
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError crée une ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}
