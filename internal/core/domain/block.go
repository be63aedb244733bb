package domain

// BlockHeader is the published header of a sealed block.
type BlockHeader struct {
	Index      uint64 `json:"index"`
	SealedAt   int64  `json:"sealedAt"`   // unix seconds
	MerkleRoot string `json:"merkleRoot"` // hex
}

// Direction says on which side of the running hash the sibling sits.
type Direction string

const (
	DirectionLeft  Direction = "L"
	DirectionRight Direction = "R"
)

// ProofItem is one step of a Merkle inclusion proof.
type ProofItem struct {
	Direction   Direction `json:"direction"`
	SiblingHash string    `json:"siblingHash"` // hex
}

// Block is a sealed block with the proof of every transaction in it.
type Block struct {
	Header BlockHeader
	TxIDs  []string
	Proofs map[string][]ProofItem // by tx id
}
