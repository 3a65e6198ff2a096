package node

import (
	"fmt"

	"github.com/RichardKnop/tinysql/internal/pkg/pager"
	"github.com/RichardKnop/tinysql/internal/pkg/row"
)

type Type byte

const (
	TypeLeaf Type = iota
	TypeInternal
)

func (t Type) String() string {
	switch t {
	case TypeLeaf:
		return "leaf"
	case TypeInternal:
		return "internal"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// Common node header layout
const (
	NodeTypeSize         = 1
	NodeTypeOffset       = 0
	IsRootSize           = 1
	IsRootOffset         = NodeTypeOffset + NodeTypeSize
	ParentPointerSize    = 4
	ParentPointerOffset  = IsRootOffset + IsRootSize
	CommonNodeHeaderSize = NodeTypeSize + IsRootSize + ParentPointerSize
)

// UsableSpace is the number of bytes every node may use. Page 0 carries the
// database header in front of its node, all other pages simply waste the
// same amount so that every node has the same capacity.
const UsableSpace = pager.PageSize - pager.RootPageConfigSize

// Leaf node layout
const (
	LeafNodeNumCellsSize   = 4
	LeafNodeNumCellsOffset = CommonNodeHeaderSize
	LeafNodeNextLeafSize   = 4
	LeafNodeNextLeafOffset = LeafNodeNumCellsOffset + LeafNodeNumCellsSize
	LeafNodeHeaderSize     = CommonNodeHeaderSize + LeafNodeNumCellsSize + LeafNodeNextLeafSize

	LeafNodeKeySize       = 4
	LeafNodeKeyOffset     = 0
	LeafNodeValueSize     = row.Size
	LeafNodeValueOffset   = LeafNodeKeyOffset + LeafNodeKeySize
	LeafNodeCellSize      = LeafNodeKeySize + LeafNodeValueSize
	LeafNodeSpaceForCells = UsableSpace - LeafNodeHeaderSize
	LeafNodeMaxCells      = LeafNodeSpaceForCells / LeafNodeCellSize

	LeafNodeRightSplitCount = (LeafNodeMaxCells + 1) / 2
	LeafNodeLeftSplitCount  = LeafNodeMaxCells + 1 - LeafNodeRightSplitCount
)

// Internal node layout
const (
	InternalNodeNumKeysSize      = 4
	InternalNodeNumKeysOffset    = CommonNodeHeaderSize
	InternalNodeRightChildSize   = 4
	InternalNodeRightChildOffset = InternalNodeNumKeysOffset + InternalNodeNumKeysSize
	InternalNodeHeaderSize       = CommonNodeHeaderSize + InternalNodeNumKeysSize + InternalNodeRightChildSize

	InternalNodeChildSize = 4
	InternalNodeKeySize   = 4
	InternalNodeCellSize  = InternalNodeChildSize + InternalNodeKeySize
	InternalNodeMaxCells  = (UsableSpace - InternalNodeHeaderSize) / InternalNodeCellSize
)

// Node is a view over the node region of a page. It does not own the
// bytes, writes go straight to the page buffer held by the pager.
type Node []byte

// FromPage returns the node stored in a page buffer, skipping the database
// header on page 0.
func FromPage(pageIdx pager.PageIndex, page []byte) Node {
	if pageIdx == 0 {
		return Node(page[pager.RootPageConfigSize:])
	}
	return Node(page[:UsableSpace])
}

func (n Node) Type() Type {
	return Type(n[NodeTypeOffset])
}

func (n Node) SetType(t Type) {
	n[NodeTypeOffset] = byte(t)
}

func (n Node) IsLeaf() bool {
	return n.Type() == TypeLeaf
}

func (n Node) IsInternal() bool {
	return n.Type() == TypeInternal
}

func (n Node) IsRoot() bool {
	return n[IsRootOffset] == 1
}

func (n Node) SetRoot(isRoot bool) {
	if isRoot {
		n[IsRootOffset] = 1
	} else {
		n[IsRootOffset] = 0
	}
}

// Parent is only meaningful when the node is not the root, page 0 is a
// valid page index so there is no "no parent" value.
func (n Node) Parent() pager.PageIndex {
	return pager.PageIndex(unmarshalUint32(n, ParentPointerOffset))
}

func (n Node) SetParent(parentIdx pager.PageIndex) {
	marshalUint32(n, uint32(parentIdx), ParentPointerOffset)
}

func (n Node) Leaf() LeafNode {
	return LeafNode{Node: n}
}

func (n Node) Internal() InternalNode {
	return InternalNode{Node: n}
}

func marshalUint32(buf []byte, n uint32, i uint64) []byte {
	buf[i+0] = byte(n >> 0)
	buf[i+1] = byte(n >> 8)
	buf[i+2] = byte(n >> 16)
	buf[i+3] = byte(n >> 24)
	return buf
}

func unmarshalUint32(buf []byte, i uint64) uint32 {
	return 0 |
		(uint32(buf[i+0]) << 0) |
		(uint32(buf[i+1]) << 8) |
		(uint32(buf[i+2]) << 16) |
		(uint32(buf[i+3]) << 24)
}
