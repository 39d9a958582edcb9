package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
)

// ReferenceKind identifies which remote entity a reference points at.
type ReferenceKind string

const (
	KindAccount  ReferenceKind = "ACCOUNT"
	KindCustomer ReferenceKind = "CUSTOMER"
	KindVendor   ReferenceKind = "VENDOR"
	KindLocation ReferenceKind = "LOCATION"
)

// ReferenceKinds lists every kind in verification order.
var ReferenceKinds = []ReferenceKind{KindCustomer, KindVendor, KindLocation, KindAccount}

// Remote account types that mark an account as payable or receivable.
const (
	AccountTypePayable    = "Accounts Payable"
	AccountTypeReceivable = "Accounts Receivable"
)

// Valid reports whether k is one of the four known kinds.
func (k ReferenceKind) Valid() bool {
	switch k {
	case KindAccount, KindCustomer, KindVendor, KindLocation:
		return true
	}
	return false
}

// BatchPrefix returns the batch item key prefix for the kind.
func (k ReferenceKind) BatchPrefix() string {
	switch k {
	case KindAccount:
		return PrefixAccount
	case KindCustomer:
		return PrefixCustomer
	case KindVendor:
		return PrefixVendor
	case KindLocation:
		return PrefixLocation
	}
	return ""
}

// RemoteEntity is the entity name the remote ledger service uses for the kind.
// Locations are departments on the remote side.
func (k ReferenceKind) RemoteEntity() string {
	switch k {
	case KindAccount:
		return "Account"
	case KindCustomer:
		return "Customer"
	case KindVendor:
		return "Vendor"
	case KindLocation:
		return "Department"
	}
	return ""
}

// NameField is the remote attribute holding the human-readable name.
func (k ReferenceKind) NameField() string {
	if k == KindCustomer || k == KindVendor {
		return "DisplayName"
	}
	return "Name"
}

// ReferenceEntity is a named external object: account, customer, vendor or location.
// The zero value is the empty reference, used for a line without counterparty or location.
type ReferenceEntity struct {
	ID           string        `json:"id,omitempty"`
	DisplayName  string        `json:"displayName,omitempty"`
	Kind         ReferenceKind `json:"kind"`
	IsPayable    bool          `json:"isPayable,omitempty"`    // accounts only
	IsReceivable bool          `json:"isReceivable,omitempty"` // accounts only
}

var illegalNameChars = ":\t\n"

// NewReference builds a fully identified reference, as loaded from the remote service.
func NewReference(kind ReferenceKind, id, displayName string) (ReferenceEntity, error) {
	if !kind.Valid() {
		return ReferenceEntity{}, fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
	}
	if strings.TrimSpace(id) == "" {
		return ReferenceEntity{}, fmt.Errorf("%w: %s id is required", apperrors.ErrValidation, strings.ToLower(string(kind)))
	}
	if err := validateDisplayName(kind, displayName); err != nil {
		return ReferenceEntity{}, err
	}
	return ReferenceEntity{ID: id, DisplayName: displayName, Kind: kind}, nil
}

// NewReferenceByID builds a reference known only by its remote id.
func NewReferenceByID(kind ReferenceKind, id string) (ReferenceEntity, error) {
	if !kind.Valid() {
		return ReferenceEntity{}, fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
	}
	if strings.TrimSpace(id) == "" {
		return ReferenceEntity{}, fmt.Errorf("%w: %s id is required", apperrors.ErrValidation, strings.ToLower(string(kind)))
	}
	return ReferenceEntity{ID: id, Kind: kind}, nil
}

// NewReferenceByName builds a reference known only by its display name.
// Verification resolves it remotely by name.
func NewReferenceByName(kind ReferenceKind, displayName string) (ReferenceEntity, error) {
	if !kind.Valid() {
		return ReferenceEntity{}, fmt.Errorf("%w: unknown reference kind %q", apperrors.ErrValidation, kind)
	}
	if err := validateDisplayName(kind, displayName); err != nil {
		return ReferenceEntity{}, err
	}
	return ReferenceEntity{DisplayName: displayName, Kind: kind}, nil
}

// NewAccount builds an account reference carrying its payable/receivable flags.
func NewAccount(id, name string, payable, receivable bool) (ReferenceEntity, error) {
	acc, err := NewReference(KindAccount, id, name)
	if err != nil {
		return ReferenceEntity{}, err
	}
	acc.IsPayable = payable
	acc.IsReceivable = receivable
	return acc, nil
}

// NewAccountFromType builds an account reference, deriving the payable/receivable
// flags from the remote account type.
func NewAccountFromType(id, name, accountType string) (ReferenceEntity, error) {
	return NewAccount(id, name, accountType == AccountTypePayable, accountType == AccountTypeReceivable)
}

func validateDisplayName(kind ReferenceKind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", apperrors.ErrValidation, strings.ToLower(string(kind)))
	}
	if (kind == KindCustomer || kind == KindVendor) && strings.ContainsAny(name, illegalNameChars) {
		return fmt.Errorf("%w: %s name %q contains an illegal character", apperrors.ErrValidation, strings.ToLower(string(kind)), name)
	}
	return nil
}

// IsEmpty reports whether r is the empty reference.
func (r ReferenceEntity) IsEmpty() bool {
	return r.Kind == "" && r.ID == "" && r.DisplayName == ""
}

// NormalizedName is the trimmed, lower-cased display name used for matching.
func NormalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizedName returns the reference's normalized display name.
func (r ReferenceEntity) NormalizedName() string {
	return NormalizedName(r.DisplayName)
}

// IdentityKey identifies the reference within its kind: by id when present, else by name.
func (r ReferenceEntity) IdentityKey() string {
	if r.ID != "" {
		return string(r.Kind) + "|id|" + r.ID
	}
	return string(r.Kind) + "|name|" + r.NormalizedName()
}

// SameAs reports whether both values denote the same remote entity.
func (r ReferenceEntity) SameAs(other ReferenceEntity) bool {
	return r.IdentityKey() == other.IdentityKey()
}

// BatchID returns the deterministic batch item key for the reference, e.g. "c_AcmeCorp" or "a_1200".
func (r ReferenceEntity) BatchID() (string, error) {
	identifier := r.ID
	if identifier == "" {
		identifier = r.DisplayName
	}
	return BatchKey(r.Kind.BatchPrefix(), identifier)
}

// Query renders the remote select statement that looks the reference up by id or by name.
func (r ReferenceEntity) Query() string {
	entity := r.Kind.RemoteEntity()
	if r.ID != "" {
		return fmt.Sprintf("select * from %s where Id = '%s'", entity, escapeQueryValue(r.ID))
	}
	return fmt.Sprintf("select * from %s where %s = '%s'", entity, r.Kind.NameField(), escapeQueryValue(r.DisplayName))
}

func escapeQueryValue(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}

func (r ReferenceEntity) String() string {
	if r.ID != "" && r.DisplayName != "" {
		return fmt.Sprintf("%s %s (%s)", strings.ToLower(string(r.Kind)), r.DisplayName, r.ID)
	}
	if r.ID != "" {
		return fmt.Sprintf("%s #%s", strings.ToLower(string(r.Kind)), r.ID)
	}
	return fmt.Sprintf("%s %s", strings.ToLower(string(r.Kind)), r.DisplayName)
}
