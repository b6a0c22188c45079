package catalog

import (
	"errors"
	"fmt"

	"github.com/aescanero/modhub/internal/domain"
)

// Validator checks catalog payloads before they reach the store
type Validator struct{}

// NewValidator creates a new payload validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateImport checks a full-catalog import
func (v *Validator) ValidateImport(mods []domain.Mod) error {
	if mods == nil {
		return errors.New("mods must be an array")
	}

	seen := make(map[int]int, len(mods))
	for i, m := range mods {
		if m.ID < 0 {
			return fmt.Errorf("mod at index %d has negative id %d", i, m.ID)
		}
		if m.ID == 0 {
			// Assigned by the store
			continue
		}
		if first, dup := seen[m.ID]; dup {
			return fmt.Errorf("duplicate mod id %d at index %d and %d", m.ID, first, i)
		}
		seen[m.ID] = i
	}

	return nil
}

// Normalize fills fields that must never be null on the wire
func (v *Validator) Normalize(m domain.Mod) domain.Mod {
	if m.Tags == nil {
		m.Tags = []string{}
	}
	return m
}
