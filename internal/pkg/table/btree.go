package table

import (
	"context"
	"fmt"
	"slices"

	"github.com/RichardKnop/tinysql/internal/pkg/pager"
)

// ensureSplitCapacity counts pages a split of the full leaf at pageIdx is
// going to allocate: the new leaf, a sibling for every full ancestor and a
// new root when the split reaches the root.
func (t *Table) ensureSplitCapacity(ctx context.Context, pageIdx pager.PageIndex) error {
	aNode, err := t.getNode(ctx, pageIdx)
	if err != nil {
		return err
	}

	needed := uint32(1)
	for i, maxPages := uint32(0), t.pager.MaxPages(); i < maxPages; i++ {
		if aNode.IsRoot() {
			needed += 1
			break
		}

		parentIdx := aNode.Parent()
		aNode, err = t.getNode(ctx, parentIdx)
		if err != nil {
			return err
		}
		if !aNode.IsInternal() {
			return fmt.Errorf("%w: parent page %d is not an internal node", pager.ErrCorruptFile, parentIdx)
		}
		if aNode.Internal().NumKeys() < t.maxICells {
			break
		}
		needed += 1
	}

	if t.pager.TotalPages()+needed > t.pager.MaxPages() {
		return fmt.Errorf(
			"%w: split needs %d new pages, %d of %d pages used",
			ErrTableFull,
			needed,
			t.pager.TotalPages(),
			t.pager.MaxPages(),
		)
	}

	return nil
}

// Handle splitting the root.
// Allocate a new internal node pointing to both halves and make it the root.
// The old root keeps its page so page 0 always stays the leftmost leaf.
func (t *Table) createNewRoot(ctx context.Context, leftChildPageIdx pager.PageIndex, separator uint32, rightChildPageIdx pager.PageIndex) error {
	newRootPageIdx := t.pager.UnusedPageIdx()

	t.logger.Sugar().With(
		"old_root_index", int(t.RootPageIdx),
		"new_root_index", int(newRootPageIdx),
		"left_child_index", int(leftChildPageIdx),
		"right_child_index", int(rightChildPageIdx),
		"separator", int(separator),
	).Debug("create new root")

	aRootNode, err := t.newNode(ctx, newRootPageIdx)
	if err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	aRoot := aRootNode.Internal()
	aRoot.Initialize()
	aRoot.SetRoot(true)
	aRoot.SetCells([]uint32{separator}, []pager.PageIndex{leftChildPageIdx, rightChildPageIdx})

	for _, childPageIdx := range []pager.PageIndex{leftChildPageIdx, rightChildPageIdx} {
		aChild, err := t.getNode(ctx, childPageIdx)
		if err != nil {
			return fmt.Errorf("create new root: %w", err)
		}
		aChild.SetRoot(false)
		aChild.SetParent(newRootPageIdx)
	}

	t.setRoot(newRootPageIdx)

	return nil
}

// internalNodeInsert records in the parent that the child leftPageIdx was
// split and rightPageIdx now holds keys greater than separator. A full
// parent is split as well and the split propagates upwards until a node
// with free space is found or a new root is created.
func (t *Table) internalNodeInsert(ctx context.Context, parentPageIdx, leftPageIdx pager.PageIndex, separator uint32, rightPageIdx pager.PageIndex) error {
	for i, maxPages := uint32(0), t.pager.MaxPages(); i < maxPages; i++ {
		aParentNode, err := t.getNode(ctx, parentPageIdx)
		if err != nil {
			return fmt.Errorf("internal node insert: %w", err)
		}
		if !aParentNode.IsInternal() {
			return fmt.Errorf("internal node insert: %w: page %d is not an internal node", pager.ErrCorruptFile, parentPageIdx)
		}
		aParent := aParentNode.Internal()

		pos, ok := aParent.IndexOfPage(leftPageIdx)
		if !ok {
			return fmt.Errorf("internal node insert: %w: page %d is not a child of page %d", pager.ErrCorruptFile, leftPageIdx, parentPageIdx)
		}

		if aParent.NumKeys() < t.maxICells {
			aParent.InsertChild(pos, separator, rightPageIdx)
			return nil
		}

		// Parent is full, lay out all keys and children including the new
		// ones and divide them between the parent and a new sibling.
		keys := slices.Insert(aParent.Keys(), int(pos), separator)
		children := slices.Insert(aParent.Children(), int(pos)+1, rightPageIdx)

		var (
			splitIdx      = (t.maxICells + 1) / 2
			pushedUpKey   = keys[splitIdx]
			leftKeys      = keys[:splitIdx]
			leftChildren  = children[:splitIdx+1]
			rightKeys     = keys[splitIdx+1:]
			rightChildren = children[splitIdx+1:]
		)

		newPageIdx := t.pager.UnusedPageIdx()

		t.logger.Sugar().With(
			"page_index", int(parentPageIdx),
			"new_page_index", int(newPageIdx),
			"pushed_up_key", int(pushedUpKey),
		).Debug("internal node split insert")

		aNewNode, err := t.newNode(ctx, newPageIdx)
		if err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		aSibling := aNewNode.Internal()
		aSibling.Initialize()
		aSibling.SetParent(aParent.Parent())

		aParent.SetCells(leftKeys, leftChildren)
		aSibling.SetCells(rightKeys, rightChildren)

		if err := t.setParent(ctx, parentPageIdx, leftChildren...); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}
		if err := t.setParent(ctx, newPageIdx, rightChildren...); err != nil {
			return fmt.Errorf("internal node split insert: %w", err)
		}

		if aParent.IsRoot() {
			return t.createNewRoot(ctx, parentPageIdx, pushedUpKey, newPageIdx)
		}

		parentPageIdx, leftPageIdx, separator, rightPageIdx = aParent.Parent(), parentPageIdx, pushedUpKey, newPageIdx
	}

	return fmt.Errorf("internal node insert: %w: tree deeper than %d pages", pager.ErrCorruptFile, t.pager.MaxPages())
}

func (t *Table) setParent(ctx context.Context, parentPageIdx pager.PageIndex, childPageIdxs ...pager.PageIndex) error {
	for _, childPageIdx := range childPageIdxs {
		aChild, err := t.getNode(ctx, childPageIdx)
		if err != nil {
			return err
		}
		aChild.SetParent(parentPageIdx)
	}
	return nil
}
