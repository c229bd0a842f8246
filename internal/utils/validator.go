package utils

import (
	"errors"
	"strings"
	"unicode"
)

const maxNameLength = 200

// ValidateParticipantName vérifie un nom de participant reçu dans une requête
func ValidateParticipantName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("le nom du participant est requis")
	}

	if len(name) > maxNameLength {
		return errors.New("le nom du participant est trop long")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.New("le nom du participant contient des caractères invalides")
		}
	}

	return nil
}

// ValidateSheetID vérifie l'identifiant d'un classeur Google Sheets
func ValidateSheetID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return errors.New("l'identifiant du classeur est requis")
	}

	for _, r := range id {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return errors.New("l'identifiant du classeur ne peut contenir que des lettres, chiffres, tirets et underscores")
		}
	}

	return nil
}

// ValidateGID vérifie l'identifiant numérique d'un onglet
func ValidateGID(gid string) error {
	gid = strings.TrimSpace(gid)

	if gid == "" {
		return errors.New("le gid de l'onglet est requis")
	}

	for _, r := range gid {
		if !unicode.IsDigit(r) {
			return errors.New("le gid de l'onglet doit être numérique")
		}
	}

	return nil
}
