package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"
	"quantum-receipt-gateway/pkg/apperror"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// defaultCreateTimeout bounds a shared wallet creation, which runs detached
// from the caller that started it.
const defaultCreateTimeout = 30 * time.Second

// WalletRegistryImpl implements ports.WalletRegistry.
type WalletRegistryImpl struct {
	ledger        ports.Ledger
	signer        ports.Signer
	store         ports.WalletStore
	keys          ports.KeyRing
	flight        singleflight.Group
	createTimeout time.Duration
	log           zerolog.Logger
	now           func() time.Time
}

// NewWalletRegistry creates a new WalletRegistryImpl.
func NewWalletRegistry(
	ledger ports.Ledger,
	signer ports.Signer,
	store ports.WalletStore,
	keys ports.KeyRing,
	log zerolog.Logger,
) *WalletRegistryImpl {
	return &WalletRegistryImpl{
		ledger:        ledger,
		signer:        signer,
		store:         store,
		keys:          keys,
		createTimeout: defaultCreateTimeout,
		log:           log,
		now:           time.Now,
	}
}

// Ensure returns the owner's wallet, creating it on first use.
// Concurrent calls for the same owner share one creation. A caller that gives
// up returns its own ctx error without cancelling the creation for the rest.
func (r *WalletRegistryImpl) Ensure(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	if ownerID == "" {
		return nil, apperror.Validation("ownerId is required")
	}

	w, err := r.store.Get(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	}
	if w != nil {
		return w, nil
	}

	ch := r.flight.DoChan(ownerID, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.createTimeout)
		defer cancel()
		return r.create(cctx, ownerID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.log.Debug().Str("owner_id", ownerID).Msg("joined in-flight wallet creation")
		}
		return res.Val.(*domain.Wallet), nil
	}
}

func (r *WalletRegistryImpl) create(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	// A flight that finished just before this one may have stored it.
	if w, err := r.store.Get(ctx, ownerID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	} else if w != nil {
		return w, nil
	}

	kp, err := r.signer.GenerateKeyPair(ctx)
	if err != nil {
		return nil, err
	}

	walletID, err := r.ledger.CreateWallet(ctx, ownerID, base64.StdEncoding.EncodeToString(kp.PublicKey))
	if err != nil {
		return nil, err
	}

	stored, written, err := r.store.PutIfAbsent(ctx, &domain.Wallet{
		WalletID:  walletID,
		OwnerID:   ownerID,
		CreatedAt: r.now().UTC(),
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("store wallet: %w", err))
	}

	held, err := r.keys.Get(ctx, stored.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read keys: %w", err))
	}
	if written || held == nil {
		if err := r.keys.Put(ctx, stored.WalletID, kp); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("store keys: %w", err))
		}
	}

	if !written {
		r.log.Info().Str("owner_id", ownerID).Str("wallet_id", stored.WalletID).Msg("adopted concurrently created wallet")
		return stored, nil
	}

	r.log.Info().
		Str("owner_id", ownerID).
		Str("wallet_id", stored.WalletID).
		Str("algorithm", kp.Algorithm).
		Str("provenance", string(kp.Provenance)).
		Msg("wallet created")
	return stored, nil
}

// Lookup returns nil, nil for an unknown owner.
func (r *WalletRegistryImpl) Lookup(ctx context.Context, ownerID string) (*domain.Wallet, error) {
	w, err := r.store.Get(ctx, ownerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	}
	return w, nil
}

// Keys returns the signing keys held for walletID.
func (r *WalletRegistryImpl) Keys(ctx context.Context, walletID string) (*domain.KeyPair, error) {
	kp, err := r.keys.Get(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("read keys: %w", err))
	}
	if kp == nil {
		return nil, apperror.ErrMissingKeys(walletID)
	}
	return kp, nil
}
