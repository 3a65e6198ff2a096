package node

import (
	"fmt"

	"github.com/RichardKnop/tinysql/internal/pkg/pager"
)

// LeafNode holds up to LeafNodeMaxCells (key, row) cells sorted by key.
type LeafNode struct {
	Node
}

// Initialize turns the page into an empty non-root leaf.
func (n LeafNode) Initialize() {
	clear(n.Node)
	n.SetType(TypeLeaf)
}

func (n LeafNode) NumCells() uint32 {
	return unmarshalUint32(n.Node, LeafNodeNumCellsOffset)
}

func (n LeafNode) SetNumCells(cells uint32) {
	marshalUint32(n.Node, cells, LeafNodeNumCellsOffset)
}

// NextLeaf is the right sibling of the leaf, 0 for the rightmost leaf.
// Page 0 is always the leftmost leaf so it is never anybody's sibling.
func (n LeafNode) NextLeaf() pager.PageIndex {
	return pager.PageIndex(unmarshalUint32(n.Node, LeafNodeNextLeafOffset))
}

func (n LeafNode) SetNextLeaf(pageIdx pager.PageIndex) {
	marshalUint32(n.Node, uint32(pageIdx), LeafNodeNextLeafOffset)
}

func (n LeafNode) Cell(cellIdx uint32) []byte {
	offset := leafCellOffset(cellIdx)
	return n.Node[offset : offset+LeafNodeCellSize]
}

func (n LeafNode) Key(cellIdx uint32) uint32 {
	return unmarshalUint32(n.Cell(cellIdx), LeafNodeKeyOffset)
}

func (n LeafNode) SetKey(cellIdx uint32, key uint32) {
	marshalUint32(n.Cell(cellIdx), key, LeafNodeKeyOffset)
}

// Value returns the serialized row of a cell. The slice aliases the page.
func (n LeafNode) Value(cellIdx uint32) []byte {
	return n.Cell(cellIdx)[LeafNodeValueOffset:]
}

// SetCell overwrites a cell without moving any other cell.
func (n LeafNode) SetCell(cellIdx uint32, key uint32, value []byte) {
	n.SetKey(cellIdx, key)
	dst := n.Value(cellIdx)
	copied := copy(dst, value)
	clear(dst[copied:])
}

// InsertCell shifts cells at and after cellIdx one slot right and writes
// the new cell into the gap.
func (n LeafNode) InsertCell(cellIdx uint32, key uint32, value []byte) {
	cells := n.NumCells()
	if cells >= LeafNodeMaxCells {
		panic(fmt.Sprintf("insert into full leaf node, %d cells", cells))
	}
	if cellIdx > cells {
		panic(fmt.Sprintf("leaf cell index %d past %d cells", cellIdx, cells))
	}

	if cellIdx < cells {
		// Make room for new cell
		copy(
			n.Node[leafCellOffset(cellIdx+1):leafCellOffset(cells+1)],
			n.Node[leafCellOffset(cellIdx):leafCellOffset(cells)],
		)
	}

	n.SetCell(cellIdx, key, value)
	n.SetNumCells(cells + 1)
}

// CopyCell copies a cell of this node into a cell of dst.
func (n LeafNode) CopyCell(dst LeafNode, dstIdx, srcIdx uint32) {
	copy(dst.Cell(dstIdx), n.Cell(srcIdx))
}

// MaxKey returns the key of the last cell, false for an empty leaf.
func (n LeafNode) MaxKey() (uint32, bool) {
	cells := n.NumCells()
	if cells == 0 {
		return 0, false
	}
	return n.Key(cells - 1), true
}

// Search returns the index of the cell holding key, or the index where key
// would have to be inserted to keep the cells sorted.
func (n LeafNode) Search(key uint32) uint32 {
	var (
		minIdx uint32
		maxIdx = n.NumCells()
	)
	for minIdx != maxIdx {
		idx := (minIdx + maxIdx) / 2
		keyAtIdx := n.Key(idx)
		if key == keyAtIdx {
			return idx
		}
		if key < keyAtIdx {
			maxIdx = idx
		} else {
			minIdx = idx + 1
		}
	}

	return minIdx
}

func (n LeafNode) Keys() []uint32 {
	cells := n.NumCells()
	keys := make([]uint32, 0, cells)
	for idx := uint32(0); idx < cells; idx++ {
		keys = append(keys, n.Key(idx))
	}
	return keys
}

func leafCellOffset(cellIdx uint32) uint64 {
	if cellIdx > LeafNodeMaxCells {
		panic(fmt.Sprintf("leaf cell index %d out of range, max cells %d", cellIdx, LeafNodeMaxCells))
	}
	return LeafNodeHeaderSize + uint64(cellIdx)*LeafNodeCellSize
}
