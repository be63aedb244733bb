// Package merkle builds and checks SHA-256 Merkle inclusion proofs.
//
// Parents are SHA-256 over the raw 32-byte children, never their hex text.
// A level with an odd node count pairs its last node with itself.
package merkle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"quantum-receipt-gateway/internal/core/domain"
)

// HashSize is the length of every node in bytes.
const HashSize = sha256.Size

var (
	ErrNoLeaves   = errors.New("merkle: no leaves")
	ErrLeafLength = errors.New("merkle: leaf hash must be 32 bytes")
	ErrOutOfRange = errors.New("merkle: leaf index out of range")
)

// HashLeaf hashes a canonical transaction encoding into a leaf.
func HashLeaf(canonical []byte) []byte {
	sum := sha256.Sum256(canonical)
	return sum[:]
}

// LeafHex returns the hex leaf hash of a payload.
func LeafHex(p domain.TransactionPayload) string {
	return hex.EncodeToString(HashLeaf(p.Canonical()))
}

func hashPair(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func decodeNode(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode hash %q: %w", s, err)
	}
	if len(b) != HashSize {
		return nil, fmt.Errorf("hash %q has %d bytes: %w", s, len(b), ErrLeafLength)
	}
	return b, nil
}

// ComputeRoot folds proof over leafHash and returns the resulting root as hex.
func ComputeRoot(leafHash string, proof []domain.ProofItem) (string, error) {
	current, err := decodeNode(leafHash)
	if err != nil {
		return "", fmt.Errorf("leaf: %w", err)
	}

	for i, item := range proof {
		sibling, err := decodeNode(item.SiblingHash)
		if err != nil {
			return "", fmt.Errorf("proof item %d: %w", i, err)
		}
		switch item.Direction {
		case domain.DirectionLeft:
			current = hashPair(sibling, current)
		case domain.DirectionRight:
			current = hashPair(current, sibling)
		default:
			return "", fmt.Errorf("proof item %d: unknown direction %q", i, item.Direction)
		}
	}

	return hex.EncodeToString(current), nil
}

// Verify reports whether proof links leafHash to root.
// Any malformed input yields false.
func Verify(leafHash string, proof []domain.ProofItem, root string) bool {
	expected, err := decodeNode(root)
	if err != nil {
		return false
	}
	computed, err := ComputeRoot(leafHash, proof)
	if err != nil {
		return false
	}
	// Both sides are lowercase hex after decoding, so case differences in root vanish.
	got, _ := hex.DecodeString(computed)
	return bytes.Equal(got, expected)
}

// VerifyReceipt checks that the receipt's proof links its transaction to its header.
func VerifyReceipt(r *domain.QuantumReceipt) bool {
	return Verify(LeafHex(r.Tx), r.MerkleProof, r.BlockHeader.MerkleRoot)
}

// Tree is a fully materialised Merkle tree. levels[0] holds the leaves.
type Tree struct {
	levels [][][]byte
}

// Build constructs a tree over leaf hashes in the given order.
func Build(leaves [][]byte) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrNoLeaves
	}

	level := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		if len(leaf) != HashSize {
			return nil, fmt.Errorf("leaf %d: %w", i, ErrLeafLength)
		}
		level[i] = bytes.Clone(leaf)
	}

	t := &Tree{levels: [][][]byte{level}}
	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			right := level[i]
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, hashPair(level[i], right))
		}
		t.levels = append(t.levels, next)
		level = next
	}

	return t, nil
}

// Root returns the hex root.
func (t *Tree) Root() string {
	top := t.levels[len(t.levels)-1]
	return hex.EncodeToString(top[0])
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.levels[0])
}

// Proof returns the inclusion proof of leaf i, ordered from leaf to root.
func (t *Tree) Proof(i int) ([]domain.ProofItem, error) {
	if i < 0 || i >= t.Len() {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}

	proof := make([]domain.ProofItem, 0, len(t.levels)-1)
	idx := i
	for _, level := range t.levels[:len(t.levels)-1] {
		if idx%2 == 0 {
			sibling := level[idx]
			if idx+1 < len(level) {
				sibling = level[idx+1]
			}
			proof = append(proof, domain.ProofItem{
				Direction:   domain.DirectionRight,
				SiblingHash: hex.EncodeToString(sibling),
			})
		} else {
			proof = append(proof, domain.ProofItem{
				Direction:   domain.DirectionLeft,
				SiblingHash: hex.EncodeToString(level[idx-1]),
			})
		}
		idx /= 2
	}

	return proof, nil
}
