package merkle

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Tree is a keccak256 commitment tree over pre-hashed leaves. Interior nodes
// hash the sorted pair of their children, so a proof carries no position
// bits: verification folds sibling hashes in order and compares roots.
// An odd node at any level is carried up unchanged.
type Tree struct {
	levels [][]common.Hash
}

// New builds a tree over the given leaves. Leaf order is significant for
// proof indexing but not for verification.
func New(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, fmt.Errorf("merkle: no leaves")
	}

	levels := [][]common.Hash{append([]common.Hash(nil), leaves...)}
	for current := levels[0]; len(current) > 1; {
		next := make([]common.Hash, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 == len(current) {
				next = append(next, current[i])
				continue
			}
			next = append(next, hashPair(current[i], current[i+1]))
		}
		levels = append(levels, next)
		current = next
	}

	return &Tree{levels: levels}, nil
}

// Root returns the tree root.
func (t *Tree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the sibling path for the leaf at index.
func (t *Tree) Proof(index int) ([]common.Hash, error) {
	if index < 0 || index >= len(t.levels[0]) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range", index)
	}

	proof := make([]common.Hash, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := index ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		index /= 2
	}
	return proof, nil
}

// Verify reports whether proof connects leaf to root.
func Verify(root, leaf common.Hash, proof []common.Hash) bool {
	node := leaf
	for _, sibling := range proof {
		node = hashPair(node, sibling)
	}
	return node == root
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}
