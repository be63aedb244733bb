package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"
	"quantum-receipt-gateway/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// BlockRepo implements ports.BlockRepository.
type BlockRepo struct {
	pool Pool
}

// NewBlockRepo creates a new BlockRepo.
func NewBlockRepo(pool Pool) *BlockRepo {
	return &BlockRepo{pool: pool}
}

// Seal writes the header, every proof and the status flip in one
// database transaction. A taken block index yields ports.ErrDuplicate.
func (r *BlockRepo) Seal(ctx context.Context, b *domain.Block) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seal: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO blocks (idx, merkle_root, sealed_at, tx_count) VALUES ($1, $2, $3, $4)`,
		b.Header.Index, b.Header.MerkleRoot, b.Header.SealedAt, len(b.TxIDs),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicate
		}
		return fmt.Errorf("insert block: %w", err)
	}

	for _, id := range b.TxIDs {
		proof, mErr := json.Marshal(b.Proofs[id])
		if mErr != nil {
			return fmt.Errorf("encode proof of %s: %w", id, mErr)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO merkle_proofs (tx_id, block_index, proof) VALUES ($1, $2, $3)`,
			id, b.Header.Index, proof,
		)
		if err != nil {
			return fmt.Errorf("insert proof of %s: %w", id, err)
		}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE ledger_transactions SET status = $1, block_index = $2 WHERE id = ANY($3) AND status = $4`,
		string(domain.TxStatusSealed), b.Header.Index, b.TxIDs, string(domain.TxStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark transactions sealed: %w", err)
	}
	if tag.RowsAffected() != int64(len(b.TxIDs)) {
		err = fmt.Errorf("mark transactions sealed: %d of %d were pending", tag.RowsAffected(), len(b.TxIDs))
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit seal: %w", err)
	}
	return nil
}

// Latest returns the highest block, or nil before the first seal.
func (r *BlockRepo) Latest(ctx context.Context) (*domain.BlockHeader, error) {
	query := `SELECT idx, sealed_at, merkle_root FROM blocks ORDER BY idx DESC LIMIT 1`
	h, err := scanHeader(r.pool.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("get latest block: %w", err)
	}
	return h, nil
}

func (r *BlockRepo) GetByIndex(ctx context.Context, index uint64) (*domain.BlockHeader, error) {
	query := `SELECT idx, sealed_at, merkle_root FROM blocks WHERE idx = $1`
	h, err := scanHeader(r.pool.QueryRow(ctx, query, index))
	if err != nil {
		return nil, fmt.Errorf("get block %d: %w", index, err)
	}
	return h, nil
}

// GetProof returns nil, nil for a transaction that is not sealed.
func (r *BlockRepo) GetProof(ctx context.Context, txID string) ([]domain.ProofItem, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT proof FROM merkle_proofs WHERE tx_id = $1`, txID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proof: %w", err)
	}

	proof := []domain.ProofItem{}
	if err := json.Unmarshal(raw, &proof); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	return proof, nil
}

func scanHeader(row pgx.Row) (*domain.BlockHeader, error) {
	h := &domain.BlockHeader{}
	if err := row.Scan(&h.Index, &h.SealedAt, &h.MerkleRoot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}
