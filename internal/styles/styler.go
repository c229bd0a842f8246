// Package styles attribue une couleur stable à chaque catégorie de question
package styles

import (
	"fmt"
	"strings"
	"sync"

	"pickem-tracker/internal/utils"
)

// ClassPrefix préfixe des classes CSS générées
const ClassPrefix = "cat-dyn-"

// Swatch couleurs d'un badge de catégorie
type Swatch struct {
	Background string `json:"background"`
	Color      string `json:"color"`
}

// DefaultPalette palette cyclique des badges
var DefaultPalette = []Swatch{
	{Background: "#1e3a5f", Color: "#60a5fa"}, {Background: "#3b1f54", Color: "#c084fc"},
	{Background: "#1a3d2e", Color: "#34d399"}, {Background: "#3d2b1a", Color: "#fbbf24"},
	{Background: "#3d1a2b", Color: "#f472b6"}, {Background: "#1a3d3d", Color: "#2dd4bf"},
	{Background: "#2d2d1a", Color: "#a3e635"}, {Background: "#3d1a1a", Color: "#fca5a5"},
	{Background: "#1a2a3d", Color: "#93c5fd"}, {Background: "#2a1a3d", Color: "#d8b4fe"},
	{Background: "#3d3d1a", Color: "#fde047"}, {Background: "#1a3d28", Color: "#6ee7b7"},
}

// Rule règle CSS enregistrée pour une classe
type Rule struct {
	Class  string
	Swatch Swatch
}

// CSS rendu de la règle
func (r Rule) CSS() string {
	return fmt.Sprintf(".%s { background: %s; color: %s; }\n", r.Class, r.Swatch.Background, r.Swatch.Color)
}

// Store mémorise les classes attribuées. Il ne fait que grandir et vit
// aussi longtemps que le processus : un rechargement des données ne le
// vide jamais.
type Store struct {
	classes map[string]string
	rules   []Rule
	mutex   sync.RWMutex
}

// NewStore crée un store vide
func NewStore() *Store {
	return &Store{classes: make(map[string]string)}
}

// Len nombre de catégories déjà vues
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.classes)
}

// Styler attribue les classes CSS des catégories
type Styler struct {
	store   *Store
	palette []Swatch
}

// New crée un Styler ; une palette vide prend DefaultPalette
func New(store *Store, palette []Swatch) *Styler {
	if store == nil {
		store = NewStore()
	}
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Styler{store: store, palette: palette}
}

// ClassFor retourne la classe de la catégorie, en l'attribuant à la
// première rencontre. La comparaison ignore la casse et les espaces autour.
// Une catégorie vide n'a pas de classe.
func (s *Styler) ClassFor(category string) string {
	key := utils.FoldKey(category)
	if key == "" {
		return ""
	}

	s.store.mutex.RLock()
	class, ok := s.store.classes[key]
	s.store.mutex.RUnlock()
	if ok {
		return class
	}

	s.store.mutex.Lock()
	defer s.store.mutex.Unlock()

	// Un autre appel a pu l'attribuer entre les deux verrous
	if class, ok := s.store.classes[key]; ok {
		return class
	}

	slot := len(s.store.classes)
	class = fmt.Sprintf("%s%d", ClassPrefix, slot)
	s.store.classes[key] = class
	s.store.rules = append(s.store.rules, Rule{Class: class, Swatch: s.palette[slot%len(s.palette)]})
	return class
}

// Rules copie des règles enregistrées, dans l'ordre d'attribution
func (s *Styler) Rules() []Rule {
	s.store.mutex.RLock()
	defer s.store.mutex.RUnlock()

	rules := make([]Rule, len(s.store.rules))
	copy(rules, s.store.rules)
	return rules
}

// Stylesheet feuille de style de toutes les classes attribuées
func (s *Styler) Stylesheet() string {
	var b strings.Builder
	for _, r := range s.Rules() {
		b.WriteString(r.CSS())
	}
	return b.String()
}
