package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
)

// ReferenceFactory builds a reference of one kind from a remote id or a display name.
// Exactly one of id and name is non-empty.
type ReferenceFactory func(lookup portsrepo.ReferenceCacheReader, id, name string) (domain.ReferenceEntity, error)

// ReferenceResolver turns caller-supplied ids and names into references, dispatching on
// the kind through a registry of factories.
type ReferenceResolver struct {
	lookup    portsrepo.ReferenceCacheReader
	factories map[domain.ReferenceKind]ReferenceFactory
}

// NewReferenceResolver creates a resolver reading names from lookup, with a factory
// registered for every kind.
func NewReferenceResolver(lookup portsrepo.ReferenceCacheReader) *ReferenceResolver {
	return &ReferenceResolver{
		lookup: lookup,
		factories: map[domain.ReferenceKind]ReferenceFactory{
			domain.KindAccount:  accountFactory,
			domain.KindCustomer: namedFactory(domain.KindCustomer),
			domain.KindVendor:   namedFactory(domain.KindVendor),
			domain.KindLocation: namedFactory(domain.KindLocation),
		},
	}
}

// Register replaces the factory of a kind.
func (r *ReferenceResolver) Register(kind domain.ReferenceKind, factory ReferenceFactory) {
	r.factories[kind] = factory
}

// Resolve builds a reference of the given kind. The id wins when both are given.
func (r *ReferenceResolver) Resolve(kind domain.ReferenceKind, id, name string) (domain.ReferenceEntity, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return domain.ReferenceEntity{}, fmt.Errorf("%w: no factory for reference kind %q", apperrors.ErrValidation, kind)
	}
	id = strings.TrimSpace(id)
	if id != "" {
		return factory(r.lookup, id, "")
	}
	if strings.TrimSpace(name) == "" {
		return domain.ReferenceEntity{}, fmt.Errorf("%w: %s needs an id or a name", apperrors.ErrValidation, strings.ToLower(string(kind)))
	}
	return factory(r.lookup, "", name)
}

// accountFactory always goes through the cache, which knows the payable and receivable
// flags of every account.
func accountFactory(lookup portsrepo.ReferenceCacheReader, id, name string) (domain.ReferenceEntity, error) {
	if id != "" {
		if n, err := strconv.Atoi(id); err != nil || n <= 0 {
			return domain.ReferenceEntity{}, fmt.Errorf("%w: account id must be a positive number, got %q", apperrors.ErrValidation, id)
		}
		return lookup.GetAccountByID(id)
	}
	return lookup.GetAccount(name)
}

func namedFactory(kind domain.ReferenceKind) ReferenceFactory {
	return func(lookup portsrepo.ReferenceCacheReader, id, name string) (domain.ReferenceEntity, error) {
		if id != "" {
			return domain.NewReferenceByID(kind, id)
		}
		if err := validateName(kind, name); err != nil {
			return domain.ReferenceEntity{}, err
		}
		remoteID, err := lookup.GetID(kind, name)
		if err != nil {
			return domain.ReferenceEntity{}, err
		}
		return domain.NewReference(kind, remoteID, name)
	}
}

func validateName(kind domain.ReferenceKind, name string) error {
	_, err := domain.NewReferenceByName(kind, name)
	return err
}
