package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"quantum-receipt-gateway/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaves(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = HashLeaf([]byte(fmt.Sprintf("tx-%d", i)))
	}
	return out
}

func TestVerify_AllLeavesOfSealedBlocks(t *testing.T) {
	for n := 1; n <= 9; n++ {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			ls := leaves(n)
			tree, err := Build(ls)
			require.NoError(t, err)

			for i, leaf := range ls {
				proof, err := tree.Proof(i)
				require.NoError(t, err)
				assert.True(t, Verify(hex.EncodeToString(leaf), proof, tree.Root()), "leaf %d", i)
			}
		})
	}
}

func TestVerify_TamperSensitivity(t *testing.T) {
	ls := leaves(5)
	tree, err := Build(ls)
	require.NoError(t, err)

	proof, err := tree.Proof(2)
	require.NoError(t, err)
	leaf := hex.EncodeToString(ls[2])

	for item := range proof {
		raw, _ := hex.DecodeString(proof[item].SiblingHash)
		for b := 0; b < len(raw); b++ {
			mutated := make([]domain.ProofItem, len(proof))
			copy(mutated, proof)
			changed := append([]byte(nil), raw...)
			changed[b] ^= 0x01
			mutated[item].SiblingHash = hex.EncodeToString(changed)

			assert.False(t, Verify(leaf, mutated, tree.Root()), "item %d byte %d", item, b)
		}
	}
}

func TestVerify_DirectionMatters(t *testing.T) {
	ls := leaves(2)
	tree, err := Build(ls)
	require.NoError(t, err)

	proof, err := tree.Proof(0)
	require.NoError(t, err)
	require.Equal(t, domain.DirectionRight, proof[0].Direction)

	proof[0].Direction = domain.DirectionLeft
	assert.False(t, Verify(hex.EncodeToString(ls[0]), proof, tree.Root()))
}

func TestVerify_SingleLeafEmptyProof(t *testing.T) {
	leaf := hex.EncodeToString(HashLeaf([]byte("only")))

	assert.True(t, Verify(leaf, nil, leaf))
	assert.True(t, Verify(leaf, []domain.ProofItem{}, strings.ToUpper(leaf)), "root comparison is case-insensitive")

	other := hex.EncodeToString(HashLeaf([]byte("other")))
	assert.False(t, Verify(leaf, nil, other))
}

func TestVerify_FoldSemantics(t *testing.T) {
	leaf := HashLeaf([]byte("leaf"))
	sib := HashLeaf([]byte("sibling"))

	left := sha256.Sum256(append(append([]byte{}, sib...), leaf...))
	right := sha256.Sum256(append(append([]byte{}, leaf...), sib...))

	proofL := []domain.ProofItem{{Direction: domain.DirectionLeft, SiblingHash: hex.EncodeToString(sib)}}
	proofR := []domain.ProofItem{{Direction: domain.DirectionRight, SiblingHash: hex.EncodeToString(sib)}}

	assert.True(t, Verify(hex.EncodeToString(leaf), proofL, hex.EncodeToString(left[:])))
	assert.True(t, Verify(hex.EncodeToString(leaf), proofR, hex.EncodeToString(right[:])))
}

func TestVerify_MalformedFailsClosed(t *testing.T) {
	good := hex.EncodeToString(HashLeaf([]byte("x")))
	sib := hex.EncodeToString(HashLeaf([]byte("y")))

	tests := []struct {
		name  string
		leaf  string
		proof []domain.ProofItem
		root  string
	}{
		{"non-hex leaf", "zz" + good[2:], nil, good},
		{"short leaf", good[:10], nil, good},
		{"non-hex root", good, nil, "not-hex"},
		{"short root", good, nil, good[:62]},
		{"empty root", good, nil, ""},
		{"non-hex sibling", good, []domain.ProofItem{{Direction: domain.DirectionLeft, SiblingHash: "xyz"}}, good},
		{"long sibling", good, []domain.ProofItem{{Direction: domain.DirectionRight, SiblingHash: sib + "00"}}, good},
		{"bad direction", good, []domain.ProofItem{{Direction: "up", SiblingHash: sib}}, good},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, Verify(tt.leaf, tt.proof, tt.root))
			})
		})
	}
}

func TestComputeRoot_Errors(t *testing.T) {
	_, err := ComputeRoot("abc", nil)
	assert.Error(t, err)

	good := hex.EncodeToString(HashLeaf([]byte("x")))
	root, err := ComputeRoot(good, nil)
	require.NoError(t, err)
	assert.Equal(t, good, root)
}

func TestBuild(t *testing.T) {
	_, err := Build(nil)
	assert.ErrorIs(t, err, ErrNoLeaves)

	_, err = Build([][]byte{{1, 2, 3}})
	assert.ErrorIs(t, err, ErrLeafLength)

	ls := leaves(3)
	tree, err := Build(ls)
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Len())

	// Odd level: the third leaf pairs with itself.
	p01 := sha256.Sum256(append(append([]byte{}, ls[0]...), ls[1]...))
	p22 := sha256.Sum256(append(append([]byte{}, ls[2]...), ls[2]...))
	root := sha256.Sum256(append(append([]byte{}, p01[:]...), p22[:]...))
	assert.Equal(t, hex.EncodeToString(root[:]), tree.Root())

	proof, err := tree.Proof(2)
	require.NoError(t, err)
	require.Len(t, proof, 2)
	assert.Equal(t, domain.ProofItem{Direction: domain.DirectionRight, SiblingHash: hex.EncodeToString(ls[2])}, proof[0])
	assert.Equal(t, domain.ProofItem{Direction: domain.DirectionLeft, SiblingHash: hex.EncodeToString(p01[:])}, proof[1])

	_, err = tree.Proof(3)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestBuild_SingleLeafRootIsLeaf(t *testing.T) {
	ls := leaves(1)
	tree, err := Build(ls)
	require.NoError(t, err)

	assert.Equal(t, hex.EncodeToString(ls[0]), tree.Root())
	proof, err := tree.Proof(0)
	require.NoError(t, err)
	assert.Empty(t, proof)
}

func TestVerifyReceipt(t *testing.T) {
	payloads := []domain.TransactionPayload{
		{FromWallet: "w1", To: "w2", Amount: 100, Currency: "USD", Nonce: 1, Timestamp: 1},
		{FromWallet: "w3", To: "w4", Amount: 7, Currency: "MXN", Nonce: 4, Timestamp: 2},
	}
	ls := [][]byte{HashLeaf(payloads[0].Canonical()), HashLeaf(payloads[1].Canonical())}
	tree, err := Build(ls)
	require.NoError(t, err)
	proof, err := tree.Proof(1)
	require.NoError(t, err)

	r := &domain.QuantumReceipt{
		Tx:          payloads[1],
		BlockHeader: domain.BlockHeader{Index: 1, MerkleRoot: tree.Root()},
		MerkleProof: proof,
	}
	assert.True(t, VerifyReceipt(r))

	r.Tx.Amount = 8
	assert.False(t, VerifyReceipt(r), "payload edits change the leaf")
}
