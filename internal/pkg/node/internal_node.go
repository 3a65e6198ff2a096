package node

import (
	"fmt"

	"github.com/RichardKnop/tinysql/internal/pkg/pager"
)

// InternalNode holds numKeys (child, key) cells plus a right child. Key i is
// the maximum key found in the subtree of child i, the right child holds all
// keys greater than the last key.
type InternalNode struct {
	Node
}

// Initialize turns the page into an empty non-root internal node.
func (n InternalNode) Initialize() {
	clear(n.Node)
	n.SetType(TypeInternal)
}

func (n InternalNode) NumKeys() uint32 {
	return unmarshalUint32(n.Node, InternalNodeNumKeysOffset)
}

func (n InternalNode) SetNumKeys(keys uint32) {
	marshalUint32(n.Node, keys, InternalNodeNumKeysOffset)
}

func (n InternalNode) RightChild() pager.PageIndex {
	return pager.PageIndex(unmarshalUint32(n.Node, InternalNodeRightChildOffset))
}

func (n InternalNode) SetRightChild(pageIdx pager.PageIndex) {
	marshalUint32(n.Node, uint32(pageIdx), InternalNodeRightChildOffset)
}

func (n InternalNode) Key(keyIdx uint32) uint32 {
	return unmarshalUint32(n.Node, internalCellOffset(keyIdx)+InternalNodeChildSize)
}

func (n InternalNode) SetKey(keyIdx uint32, key uint32) {
	marshalUint32(n.Node, key, internalCellOffset(keyIdx)+InternalNodeChildSize)
}

// Child returns the page of child childIdx, childIdx equal to the number
// of keys means the right child.
func (n InternalNode) Child(childIdx uint32) pager.PageIndex {
	keys := n.NumKeys()
	if childIdx > keys {
		panic(fmt.Sprintf("tried to access child %d > num keys %d", childIdx, keys))
	}
	if childIdx == keys {
		return n.RightChild()
	}
	return pager.PageIndex(unmarshalUint32(n.Node, internalCellOffset(childIdx)))
}

func (n InternalNode) SetChild(childIdx uint32, pageIdx pager.PageIndex) {
	keys := n.NumKeys()
	if childIdx > keys {
		panic(fmt.Sprintf("tried to set child %d > num keys %d", childIdx, keys))
	}
	if childIdx == keys {
		n.SetRightChild(pageIdx)
		return
	}
	marshalUint32(n.Node, uint32(pageIdx), internalCellOffset(childIdx))
}

// IndexOfChild returns the index of the child which should contain the key,
// the index equals number of keys when the key belongs to the right child.
func (n InternalNode) IndexOfChild(key uint32) uint32 {
	var (
		minIdx uint32
		maxIdx = n.NumKeys()
	)
	for minIdx != maxIdx {
		idx := (minIdx + maxIdx) / 2
		if n.Key(idx) >= key {
			maxIdx = idx
		} else {
			minIdx = idx + 1
		}
	}

	return minIdx
}

// IndexOfPage looks for a child pointer to pageIdx.
func (n InternalNode) IndexOfPage(pageIdx pager.PageIndex) (uint32, bool) {
	keys := n.NumKeys()
	for idx := uint32(0); idx <= keys; idx++ {
		if n.Child(idx) == pageIdx {
			return idx, true
		}
	}
	return 0, false
}

// InsertChild records that child pos was split in two. The left half stays
// at pos with separator as its max key, right goes to pos+1 and inherits
// the key previously stored at pos. The node must have room for one more key.
func (n InternalNode) InsertChild(pos uint32, separator uint32, right pager.PageIndex) {
	keys := n.NumKeys()
	if keys >= InternalNodeMaxCells {
		panic(fmt.Sprintf("insert into full internal node, %d keys", keys))
	}
	if pos > keys {
		panic(fmt.Sprintf("child position %d > num keys %d", pos, keys))
	}

	left := n.Child(pos)

	if pos == keys {
		// Split the right child, old right child becomes the last cell
		n.SetNumKeys(keys + 1)
		n.SetChild(pos, left)
		n.SetKey(pos, separator)
		n.SetRightChild(right)
		return
	}

	oldKey := n.Key(pos)
	copy(
		n.Node[internalCellOffset(pos+1):internalCellOffset(keys+1)],
		n.Node[internalCellOffset(pos):internalCellOffset(keys)],
	)
	n.SetNumKeys(keys + 1)
	n.SetChild(pos, left)
	n.SetKey(pos, separator)
	n.SetChild(pos+1, right)
	n.SetKey(pos+1, oldKey)
}

// SetCells replaces the whole content of the node, children must hold one
// more element than keys, the last one becoming the right child.
func (n InternalNode) SetCells(keys []uint32, children []pager.PageIndex) {
	if len(children) != len(keys)+1 {
		panic(fmt.Sprintf("internal node needs %d children for %d keys, got %d", len(keys)+1, len(keys), len(children)))
	}
	if len(keys) > InternalNodeMaxCells {
		panic(fmt.Sprintf("%d keys do not fit into internal node", len(keys)))
	}

	n.SetNumKeys(uint32(len(keys)))
	for idx, key := range keys {
		n.SetKey(uint32(idx), key)
		n.SetChild(uint32(idx), children[idx])
	}
	n.SetRightChild(children[len(keys)])
}

func (n InternalNode) Keys() []uint32 {
	numKeys := n.NumKeys()
	keys := make([]uint32, 0, numKeys)
	for idx := uint32(0); idx < numKeys; idx++ {
		keys = append(keys, n.Key(idx))
	}
	return keys
}

// Children returns all child pointers including the right child.
func (n InternalNode) Children() []pager.PageIndex {
	numKeys := n.NumKeys()
	children := make([]pager.PageIndex, 0, numKeys+1)
	for idx := uint32(0); idx <= numKeys; idx++ {
		children = append(children, n.Child(idx))
	}
	return children
}

func internalCellOffset(keyIdx uint32) uint64 {
	if keyIdx > InternalNodeMaxCells {
		panic(fmt.Sprintf("internal cell index %d out of range, max cells %d", keyIdx, InternalNodeMaxCells))
	}
	return InternalNodeHeaderSize + uint64(keyIdx)*InternalNodeCellSize
}
