package table

import (
	"context"
	"fmt"

	"github.com/RichardKnop/tinysql/internal/pkg/node"
	"github.com/RichardKnop/tinysql/internal/pkg/pager"
	"github.com/RichardKnop/tinysql/internal/pkg/row"
)

// Cursor points at a cell of a leaf node. It is only valid until the next
// insert into the table.
type Cursor struct {
	Table      *Table
	PageIdx    pager.PageIndex
	CellIdx    uint32
	EndOfTable bool
}

// Value returns the serialized row under the cursor. The slice aliases the
// page buffer, it must not be retained across inserts.
func (c *Cursor) Value(ctx context.Context) ([]byte, error) {
	if c.EndOfTable {
		return nil, fmt.Errorf("cursor value: end of table")
	}

	aNode, err := c.Table.getNode(ctx, c.PageIdx)
	if err != nil {
		return nil, err
	}
	aLeaf := aNode.Leaf()
	if c.CellIdx >= aLeaf.NumCells() {
		return nil, fmt.Errorf("cursor value: cell %d out of %d cells on page %d", c.CellIdx, aLeaf.NumCells(), c.PageIdx)
	}

	return aLeaf.Value(c.CellIdx), nil
}

func (c *Cursor) Row(ctx context.Context) (row.Row, error) {
	value, err := c.Value(ctx)
	if err != nil {
		return row.Row{}, err
	}

	var aRow row.Row
	if _, err := aRow.Unmarshal(value); err != nil {
		return row.Row{}, err
	}
	return aRow, nil
}

// Advance moves the cursor to the next cell, crossing into the next leaf
// when the current one is exhausted.
func (c *Cursor) Advance(ctx context.Context) error {
	if c.EndOfTable {
		return nil
	}

	aNode, err := c.Table.getNode(ctx, c.PageIdx)
	if err != nil {
		return err
	}
	aLeaf := aNode.Leaf()

	// There are still more cells in the page
	c.CellIdx += 1
	if c.CellIdx < aLeaf.NumCells() {
		return nil
	}

	// If there is no leaf page to the right, set end of table flag and return
	nextLeaf := aLeaf.NextLeaf()
	if nextLeaf == 0 {
		c.EndOfTable = true
		return nil
	}

	aNextNode, err := c.Table.getNode(ctx, nextLeaf)
	if err != nil {
		return err
	}
	if !aNextNode.IsLeaf() {
		return fmt.Errorf("%w: next leaf %d of page %d is not a leaf", pager.ErrCorruptFile, nextLeaf, c.PageIdx)
	}

	c.PageIdx = nextLeaf
	c.CellIdx = 0
	c.EndOfTable = aNextNode.Leaf().NumCells() == 0

	return nil
}

// LeafNodeInsert inserts a cell at the cursor position, splitting the leaf
// when it is full.
func (c *Cursor) LeafNodeInsert(ctx context.Context, key uint32, aRow row.Row) error {
	value, err := aRow.Marshal(nil)
	if err != nil {
		return err
	}

	aNode, err := c.Table.getNode(ctx, c.PageIdx)
	if err != nil {
		return err
	}
	if !aNode.IsLeaf() {
		return fmt.Errorf("error inserting row to a non leaf node, key %d", key)
	}
	aLeaf := aNode.Leaf()

	cells := aLeaf.NumCells()
	if c.CellIdx < cells && aLeaf.Key(c.CellIdx) == key {
		return ErrDuplicateKey
	}

	if cells >= node.LeafNodeMaxCells {
		return c.leafNodeSplitInsert(ctx, aLeaf, key, value)
	}

	aLeaf.InsertCell(c.CellIdx, key, value)

	return nil
}

// Create a new node and move half the cells over.
// Insert the new value in one of the two nodes.
// Update parent or create a new parent.
func (c *Cursor) leafNodeSplitInsert(ctx context.Context, aSplitLeaf node.LeafNode, key uint32, value []byte) error {
	aTable := c.Table

	// Nothing is modified unless every page of the split can be allocated
	if err := aTable.ensureSplitCapacity(ctx, c.PageIdx); err != nil {
		return err
	}

	originalMaxKey, _ := aSplitLeaf.MaxKey()
	newPageIdx := aTable.pager.UnusedPageIdx()

	aTable.logger.Sugar().With(
		"key", int(key),
		"page_index", int(c.PageIdx),
		"old_max_key", int(originalMaxKey),
		"new_page_index", int(newPageIdx),
	).Debug("leaf node split insert")

	aNewNode, err := aTable.newNode(ctx, newPageIdx)
	if err != nil {
		return err
	}
	aNewLeaf := aNewNode.Leaf()
	aNewLeaf.Initialize()
	aNewLeaf.SetParent(aSplitLeaf.Parent())

	aNewLeaf.SetNextLeaf(aSplitLeaf.NextLeaf())
	aSplitLeaf.SetNextLeaf(newPageIdx)

	// All existing keys plus new key should should be divided
	// evenly between old (left) and new (right) nodes.
	// Starting from the right, move each key to correct position.
	for i := int(node.LeafNodeMaxCells); i >= 0; i-- {
		var (
			idx  = uint32(i)
			dest = aSplitLeaf
		)
		if idx >= node.LeafNodeLeftSplitCount {
			dest = aNewLeaf
		}
		destIdx := idx % node.LeafNodeLeftSplitCount

		switch {
		case idx == c.CellIdx:
			dest.SetCell(destIdx, key, value)
		case idx > c.CellIdx:
			aSplitLeaf.CopyCell(dest, destIdx, idx-1)
		default:
			aSplitLeaf.CopyCell(dest, destIdx, idx)
		}
	}

	// Update cell count on both leaf nodes
	aSplitLeaf.SetNumCells(node.LeafNodeLeftSplitCount)
	aNewLeaf.SetNumCells(node.LeafNodeRightSplitCount)

	separator, _ := aSplitLeaf.MaxKey()

	if aSplitLeaf.IsRoot() {
		return aTable.createNewRoot(ctx, c.PageIdx, separator, newPageIdx)
	}

	return aTable.internalNodeInsert(ctx, aSplitLeaf.Parent(), c.PageIdx, separator, newPageIdx)
}
