package services_test

import (
	"testing"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_sync/internal/core/services"
	"github.com/SscSPs/ledger_sync/internal/refcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedCache(t *testing.T) *refcache.ReferenceCache {
	t.Helper()
	cache := refcache.New()
	ap, err := domain.NewAccountFromType("20", "Accounts Payable", domain.AccountTypePayable)
	require.NoError(t, err)
	paper, err := domain.NewReference(domain.KindVendor, "7", "Paper Co")
	require.NoError(t, err)
	require.NoError(t, cache.Load(map[domain.ReferenceKind][]domain.ReferenceEntity{
		domain.KindAccount: {account(t, "10", "Cash"), ap},
		domain.KindVendor:  {paper},
	}))
	return cache
}

func TestReferenceResolver_Resolve(t *testing.T) {
	resolver := services.NewReferenceResolver(loadedCache(t))

	tests := []struct {
		name    string
		kind    domain.ReferenceKind
		id      string
		refName string
		wantID  string
		wantErr error
	}{
		{name: "account by name", kind: domain.KindAccount, refName: "accounts payable", wantID: "20"},
		{name: "account by id", kind: domain.KindAccount, id: "10", wantID: "10"},
		{name: "id wins over name", kind: domain.KindAccount, id: "10", refName: "Accounts Payable", wantID: "10"},
		{name: "account id must be numeric", kind: domain.KindAccount, id: "abc", wantErr: apperrors.ErrValidation},
		{name: "account id must be positive", kind: domain.KindAccount, id: "0", wantErr: apperrors.ErrValidation},
		{name: "unknown account", kind: domain.KindAccount, refName: "Suspense", wantErr: apperrors.ErrNotFound},
		{name: "vendor by name", kind: domain.KindVendor, refName: "PAPER CO", wantID: "7"},
		{name: "vendor by id skips cache", kind: domain.KindVendor, id: "99", wantID: "99"},
		{name: "customers not loaded", kind: domain.KindCustomer, refName: "Acme", wantErr: apperrors.ErrNotLoaded},
		{name: "illegal customer name", kind: domain.KindCustomer, refName: "Acme:East", wantErr: apperrors.ErrValidation},
		{name: "neither id nor name", kind: domain.KindLocation, refName: "  ", wantErr: apperrors.ErrValidation},
		{name: "unknown kind", kind: domain.ReferenceKind("ITEM"), refName: "x", wantErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := resolver.Resolve(tt.kind, tt.id, tt.refName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, ref.Kind)
			assert.Equal(t, tt.wantID, ref.ID)
		})
	}
}

func TestReferenceResolver_AccountCarriesPayableFlag(t *testing.T) {
	resolver := services.NewReferenceResolver(loadedCache(t))

	ap, err := resolver.Resolve(domain.KindAccount, "20", "")
	require.NoError(t, err)
	assert.True(t, ap.IsPayable)
	assert.False(t, ap.IsReceivable)
}

func TestReferenceResolver_Register(t *testing.T) {
	resolver := services.NewReferenceResolver(loadedCache(t))
	resolver.Register(domain.KindLocation, func(_ portsrepo.ReferenceCacheReader, id, name string) (domain.ReferenceEntity, error) {
		return domain.NewReference(domain.KindLocation, "1", name)
	})

	ref, err := resolver.Resolve(domain.KindLocation, "", "Head Office")
	require.NoError(t, err)
	assert.Equal(t, "1", ref.ID)
	assert.Equal(t, "Head Office", ref.DisplayName)
}
