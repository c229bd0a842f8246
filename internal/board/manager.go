// Package board charge les deux feuilles, les rapproche et publie le jeu de
// données courant. Un rechargement échoué conserve le jeu précédent.
package board

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"pickem-tracker/internal/database"
	apperrors "pickem-tracker/internal/errors"
	"pickem-tracker/internal/models"
	"pickem-tracker/internal/reconcile"
	"pickem-tracker/internal/sheets"
)

// ErrStaleReload un rechargement plus récent a déjà été publié
var ErrStaleReload = errors.New("a newer dataset is already published")

// Store persistance des instantanés et de l'historique
type Store interface {
	SaveSnapshot(ctx context.Context, snap *models.Snapshot) error
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
	RecordReload(ctx context.Context, rec database.ReloadRecord) (int64, error)
	RecentReloads(ctx context.Context, limit int) ([]database.ReloadRecord, error)
}

// Event notification envoyée aux abonnés après chaque rechargement.
// Err est renseigné si le rechargement a échoué ; Snapshot reste alors
// le jeu précédemment publié (éventuellement nil).
type Event struct {
	Snapshot *models.Snapshot
	Err      error
}

// Status état du chargement exposé par l'API
type Status struct {
	Loaded      bool      `json:"loaded"`
	Restored    bool      `json:"restored"`
	Sequence    uint64    `json:"sequence"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
	Entries     int       `json:"entries"`
	Questions   int       `json:"questions"`
	Resolved    int       `json:"resolved"`
	LastAttempt time.Time `json:"last_attempt,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
}

// Options paramètres du Manager
type Options struct {
	Source     sheets.Source
	Contest    sheets.TableRef
	Results    sheets.TableRef
	Reconciler *reconcile.Reconciler
	Store      Store // optionnel
	Interval   time.Duration
	Logger     *zerolog.Logger
}

// Manager orchestre les rechargements
type Manager struct {
	source     sheets.Source
	contest    sheets.TableRef
	results    sheets.TableRef
	reconciler *reconcile.Reconciler
	store      Store
	interval   time.Duration
	logger     *zerolog.Logger

	current atomic.Pointer[models.Snapshot]
	seq     atomic.Uint64

	mutex       sync.Mutex
	lastAttempt time.Time
	lastErr     error
	lastErrSeq  uint64
	subscribers []func(Event)

	now func() time.Time
}

// NewManager crée un Manager
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	reconciler := opts.Reconciler
	if reconciler == nil {
		reconciler = reconcile.New(reconcile.Config{}, logger)
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	return &Manager{
		source:     opts.Source,
		contest:    opts.Contest,
		results:    opts.Results,
		reconciler: reconciler,
		store:      opts.Store,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Current dernier instantané publié, nil avant le premier chargement
func (m *Manager) Current() *models.Snapshot {
	return m.current.Load()
}

// Dataset jeu de données publié ou ErrNoDataset
func (m *Manager) Dataset() (*models.Dataset, error) {
	snap := m.current.Load()
	if snap == nil || snap.Dataset == nil {
		return nil, apperrors.ErrNoDataset
	}
	return snap.Dataset, nil
}

// Subscribe enregistre fn, appelée après chaque rechargement
func (m *Manager) Subscribe(fn func(Event)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Status état courant
func (m *Manager) Status() Status {
	m.mutex.Lock()
	status := Status{LastAttempt: m.lastAttempt}
	if m.lastErr != nil {
		status.LastError = m.lastErr.Error()
	}
	m.mutex.Unlock()

	if snap := m.current.Load(); snap != nil && snap.Dataset != nil {
		status.Loaded = true
		status.Restored = snap.Restored
		status.Sequence = snap.Sequence
		status.LoadedAt = snap.LoadedAt
		status.Entries = len(snap.Dataset.Entries)
		status.Questions = len(snap.Dataset.QuestionColumns)
		status.Resolved = snap.Dataset.ResolvedCount()
	}
	return status
}

// History derniers rechargements enregistrés
func (m *Manager) History(ctx context.Context, limit int) ([]database.ReloadRecord, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.RecentReloads(ctx, limit)
}

// Reload récupère les deux feuilles en parallèle, les rapproche et publie
// le résultat. Un rechargement démarré avant celui actuellement publié est
// écarté avec ErrStaleReload.
func (m *Manager) Reload(ctx context.Context) (*models.Snapshot, error) {
	seq := m.seq.Add(1)
	started := m.now()

	m.mutex.Lock()
	m.lastAttempt = started
	m.mutex.Unlock()

	ds, err := m.load(ctx)
	if err != nil {
		m.fail(ctx, seq, started, err)
		return nil, err
	}

	snap := &models.Snapshot{Dataset: ds, LoadedAt: m.now(), Sequence: seq}
	if !m.publish(snap) {
		m.logger.Debug().Uint64("sequence", seq).Msg("Rechargement obsolète ignoré")
		m.record(ctx, seq, started, database.ReloadStale, nil)
		return m.current.Load(), ErrStaleReload
	}

	m.logger.Info().
		Uint64("sequence", seq).
		Int("entries", len(ds.Entries)).
		Int("questions", len(ds.QuestionColumns)).
		Dur("duration", m.now().Sub(started)).
		Msg("Tableau rechargé")

	if m.store != nil {
		if err := m.store.SaveSnapshot(ctx, snap); err != nil {
			m.logger.Error().Err(err).Msg("Erreur sauvegarde instantané")
		}
	}
	m.record(ctx, seq, started, database.ReloadOK, nil)
	m.notify(Event{Snapshot: snap})

	return snap, nil
}

func (m *Manager) load(ctx context.Context) (*models.Dataset, error) {
	if m.source == nil {
		return nil, apperrors.NewTransportError("contest", errors.New("no sheet source configured"))
	}

	var contestRaw, resultsRaw *sheets.RawTable
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := m.source.Fetch(gctx, m.contest)
		if err != nil {
			return apperrors.NewTransportError(m.contest.Name, err)
		}
		contestRaw = raw
		return nil
	})
	g.Go(func() error {
		raw, err := m.source.Fetch(gctx, m.results)
		if err != nil {
			return apperrors.NewTransportError(m.results.Name, err)
		}
		resultsRaw = raw
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	contest := sheets.Normalize(contestRaw, m.contest.HeaderRows)
	results := sheets.Normalize(resultsRaw, m.results.HeaderRows)
	return m.reconciler.Reconcile(contest, results)
}

// publish remplace l'instantané courant sauf s'il est plus récent
func (m *Manager) publish(snap *models.Snapshot) bool {
	for {
		cur := m.current.Load()
		if cur != nil && cur.Sequence > snap.Sequence {
			return false
		}
		if m.current.CompareAndSwap(cur, snap) {
			m.mutex.Lock()
			if m.lastErrSeq < snap.Sequence {
				m.lastErr = nil
			}
			m.mutex.Unlock()
			return true
		}
	}
}

func (m *Manager) fail(ctx context.Context, seq uint64, started time.Time, err error) {
	m.logger.Error().Err(err).Uint64("sequence", seq).Msg("Erreur rechargement du tableau")

	m.mutex.Lock()
	if cur := m.current.Load(); cur == nil || cur.Sequence < seq {
		m.lastErr = err
		m.lastErrSeq = seq
	}
	m.mutex.Unlock()

	m.record(ctx, seq, started, database.ReloadFailed, err)
	m.notify(Event{Snapshot: m.current.Load(), Err: err})
}

func (m *Manager) record(ctx context.Context, seq uint64, started time.Time, status string, err error) {
	if m.store == nil {
		return
	}
	rec := database.ReloadRecord{
		Sequence:  seq,
		Status:    status,
		Duration:  m.now().Sub(started),
		StartedAt: started,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	// Le contexte de la requête peut déjà être annulé
	if _, dbErr := m.store.RecordReload(context.WithoutCancel(ctx), rec); dbErr != nil {
		m.logger.Warn().Err(dbErr).Msg("Erreur enregistrement historique")
	}
}

func (m *Manager) notify(ev Event) {
	m.mutex.Lock()
	subscribers := make([]func(Event), len(m.subscribers))
	copy(subscribers, m.subscribers)
	m.mutex.Unlock()

	for _, fn := range subscribers {
		fn(ev)
	}
}

// Restore publie le dernier instantané enregistré si aucun jeu n'est encore
// chargé. Retourne false si la base est vide.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	if m.store == nil {
		return false, nil
	}

	snap, err := m.store.LatestSnapshot(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}

	// Les rechargements suivants doivent avoir un numéro supérieur
	for {
		cur := m.seq.Load()
		if cur >= snap.Sequence || m.seq.CompareAndSwap(cur, snap.Sequence) {
			break
		}
	}

	snap.Restored = true
	if !m.current.CompareAndSwap(nil, snap) {
		return false, nil
	}

	m.logger.Info().
		Uint64("sequence", snap.Sequence).
		Time("loaded_at", snap.LoadedAt).
		Msg("Instantané restauré depuis la base")
	m.notify(Event{Snapshot: snap})
	return true, nil
}

// Run charge immédiatement puis à chaque intervalle jusqu'à l'annulation de ctx
func (m *Manager) Run(ctx context.Context) {
	m.logger.Info().Dur("interval", m.interval).Msg("Rafraîchissement périodique démarré")

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Reload(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Rafraîchissement périodique arrêté")
			return
		case <-ticker.C:
			m.Reload(ctx)
		}
	}
}
