package table

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/RichardKnop/tinysql/internal/pkg/pager"
)

// PrintTree writes an indented dump of the tree, one node or key per line:
//
//	- internal (size 1)
//	  - leaf (size 7)
//	    - 1
//	    ...
//	  - key 7
//	  - leaf (size 7)
//	    - 8
//	    ...
func (t *Table) PrintTree(ctx context.Context, w io.Writer) error {
	if t.pager.TotalPages() == 0 {
		_, err := fmt.Fprintln(w, "- leaf (size 0)")
		return err
	}
	return t.printNode(ctx, w, t.RootPageIdx, 0)
}

func (t *Table) printNode(ctx context.Context, w io.Writer, pageIdx pager.PageIndex, level uint32) error {
	if level >= t.pager.MaxPages() {
		return fmt.Errorf("print tree: %w: tree deeper than %d pages", pager.ErrCorruptFile, t.pager.MaxPages())
	}

	aNode, err := t.getNode(ctx, pageIdx)
	if err != nil {
		return err
	}
	indent := strings.Repeat("  ", int(level))

	if aNode.IsLeaf() {
		aLeaf := aNode.Leaf()
		if _, err := fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, aLeaf.NumCells()); err != nil {
			return err
		}
		for _, key := range aLeaf.Keys() {
			if _, err := fmt.Fprintf(w, "%s  - %d\n", indent, key); err != nil {
				return err
			}
		}
		return nil
	}

	anInternal := aNode.Internal()
	if _, err := fmt.Fprintf(w, "%s- internal (size %d)\n", indent, anInternal.NumKeys()); err != nil {
		return err
	}
	for i, key := range anInternal.Keys() {
		if err := t.printNode(ctx, w, anInternal.Child(uint32(i)), level+1); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s  - key %d\n", indent, key); err != nil {
			return err
		}
	}

	return t.printNode(ctx, w, anInternal.RightChild(), level+1)
}
