package util

import (
	"fmt"
	"io"

	"github.com/RichardKnop/tinysql/internal/pkg/node"
	"github.com/RichardKnop/tinysql/internal/pkg/row"
)

// PrintRow prints a row as "(id, username, email)".
func PrintRow(w io.Writer, aRow row.Row) error {
	_, err := fmt.Fprintln(w, aRow.String())
	return err
}

func PrintRows(w io.Writer, rows []row.Row) error {
	for _, aRow := range rows {
		if err := PrintRow(w, aRow); err != nil {
			return err
		}
	}
	return nil
}

// PrintConstants prints the layout constants of rows and leaf nodes.
func PrintConstants(w io.Writer) error {
	constants := []struct {
		Name  string
		Value int
	}{
		{"ROW_SIZE", row.Size},
		{"COMMON_NODE_HEADER_SIZE", node.CommonNodeHeaderSize},
		{"LEAF_NODE_HEADER_SIZE", node.LeafNodeHeaderSize},
		{"LEAF_NODE_CELL_SIZE", node.LeafNodeCellSize},
		{"LEAF_NODE_SPACE_FOR_CELLS", node.LeafNodeSpaceForCells},
		{"LEAF_NODE_MAX_CELLS", node.LeafNodeMaxCells},
	}

	for _, aConstant := range constants {
		if _, err := fmt.Fprintf(w, "%s: %d\n", aConstant.Name, aConstant.Value); err != nil {
			return err
		}
	}
	return nil
}
