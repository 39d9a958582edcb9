package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/google/uuid"
)

// Batch item key prefixes.
const (
	PrefixAccount      = "a"
	PrefixCustomer     = "c"
	PrefixVendor       = "v"
	PrefixLocation     = "l"
	PrefixJournalEntry = "je"
)

// BatchKey joins a prefix and an identifier with all whitespace removed from the identifier.
func BatchKey(prefix, identifier string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: batch key prefix is required", apperrors.ErrValidation)
	}
	sanitized := strings.Join(strings.Fields(identifier), "")
	if sanitized == "" {
		return "", fmt.Errorf("%w: batch key identifier is required", apperrors.ErrValidation)
	}
	return prefix + "_" + sanitized, nil
}

// JournalEntryBatchKey returns "je_<uuid>" for an internal id.
func JournalEntryBatchKey(internalID uuid.UUID) string {
	return PrefixJournalEntry + "_" + internalID.String()
}

// ParseJournalEntryBatchKey recovers the internal id from a "je_<uuid>" key.
func ParseJournalEntryBatchKey(key string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(key, PrefixJournalEntry+"_")
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %q is not a journal entry batch key", apperrors.ErrValidation, key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid journal entry id in %q: %v", apperrors.ErrValidation, key, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: journal entry id must not be nil", apperrors.ErrValidation)
	}
	return id, nil
}
