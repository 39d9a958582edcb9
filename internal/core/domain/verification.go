package domain

import (
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
)

// VerificationResults is the outcome of one verification pass: remote entities that were
// found, and locally built references that could not be resolved.
type VerificationResults struct {
	foundByID   map[ReferenceKind]map[string]ReferenceEntity
	foundByName map[ReferenceKind]map[string]ReferenceEntity
	failed      map[ReferenceKind][]ReferenceEntity
}

// NewVerificationResults creates an empty result set.
func NewVerificationResults() *VerificationResults {
	v := &VerificationResults{
		foundByID:   make(map[ReferenceKind]map[string]ReferenceEntity),
		foundByName: make(map[ReferenceKind]map[string]ReferenceEntity),
		failed:      make(map[ReferenceKind][]ReferenceEntity),
	}
	for _, kind := range ReferenceKinds {
		v.foundByID[kind] = make(map[string]ReferenceEntity)
		v.foundByName[kind] = make(map[string]ReferenceEntity)
	}
	return v
}

// AddFound records a remote entity returned by the service.
func (v *VerificationResults) AddFound(found ReferenceEntity) error {
	if !found.Kind.Valid() || found.IsEmpty() {
		return fmt.Errorf("%w: found entity must have a known kind", apperrors.ErrValidation)
	}
	if found.ID != "" {
		v.foundByID[found.Kind][found.ID] = found
	}
	if name := found.NormalizedName(); name != "" {
		v.foundByName[found.Kind][name] = found
	}
	return nil
}

// AddFailed records a reference that could not be resolved.
func (v *VerificationResults) AddFailed(ref ReferenceEntity) error {
	if !ref.Kind.Valid() || ref.IsEmpty() {
		return fmt.Errorf("%w: failed reference must have a known kind", apperrors.ErrValidation)
	}
	v.failed[ref.Kind] = append(v.failed[ref.Kind], ref)
	return nil
}

// Find looks a reference up among found entities, by id first and then by name.
func (v *VerificationResults) Find(ref ReferenceEntity) (ReferenceEntity, bool) {
	if ref.ID != "" {
		if found, ok := v.foundByID[ref.Kind][ref.ID]; ok {
			return found, true
		}
	}
	if name := ref.NormalizedName(); name != "" {
		if found, ok := v.foundByName[ref.Kind][name]; ok {
			return found, true
		}
	}
	return ReferenceEntity{}, false
}

// IsFailed reports whether ref was recorded as unresolved.
func (v *VerificationResults) IsFailed(ref ReferenceEntity) bool {
	for _, f := range v.failed[ref.Kind] {
		if f.SameAs(ref) {
			return true
		}
	}
	return false
}

// Failed returns the unresolved references of one kind.
func (v *VerificationResults) Failed(kind ReferenceKind) []ReferenceEntity {
	return append([]ReferenceEntity(nil), v.failed[kind]...)
}

func (v *VerificationResults) FailedAccounts() []ReferenceEntity  { return v.Failed(KindAccount) }
func (v *VerificationResults) FailedCustomers() []ReferenceEntity { return v.Failed(KindCustomer) }
func (v *VerificationResults) FailedVendors() []ReferenceEntity   { return v.Failed(KindVendor) }
func (v *VerificationResults) FailedLocations() []ReferenceEntity { return v.Failed(KindLocation) }

// FoundCount returns how many distinct remote entities of a kind were found.
func (v *VerificationResults) FoundCount(kind ReferenceKind) int {
	seen := make(map[string]struct{})
	for _, e := range v.foundByID[kind] {
		seen[e.IdentityKey()] = struct{}{}
	}
	for _, e := range v.foundByName[kind] {
		if e.ID == "" {
			seen[e.IdentityKey()] = struct{}{}
		}
	}
	return len(seen)
}

// FailedCount returns the total number of unresolved references.
func (v *VerificationResults) FailedCount() int {
	n := 0
	for _, refs := range v.failed {
		n += len(refs)
	}
	return n
}
