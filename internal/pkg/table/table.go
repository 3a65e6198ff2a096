package table

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardKnop/tinysql/internal/pkg/node"
	"github.com/RichardKnop/tinysql/internal/pkg/pager"
	"github.com/RichardKnop/tinysql/internal/pkg/row"
)

var (
	ErrDuplicateKey = fmt.Errorf("duplicate key")
	ErrTableFull    = pager.ErrTableFull
)

type Pager interface {
	GetPage(context.Context, pager.PageIndex) ([]byte, error)
	TotalPages() uint32
	MaxPages() uint32
	UnusedPageIdx() pager.PageIndex
	Header() pager.DatabaseHeader
	SaveHeader(pager.DatabaseHeader)
	Close(context.Context) error
}

type Option func(*Table)

// WithMaxInternalCells lowers the fan-out of internal nodes, values outside
// [2, node.InternalNodeMaxCells] are clamped.
func WithMaxInternalCells(maxICells uint32) Option {
	return func(t *Table) {
		t.maxICells = max(2, min(maxICells, node.InternalNodeMaxCells))
	}
}

// WithPagerOptions passes options to the pager created by Open.
func WithPagerOptions(opts ...pager.Option) Option {
	return func(t *Table) {
		t.pagerOpts = append(t.pagerOpts, opts...)
	}
}

type Table struct {
	RootPageIdx pager.PageIndex
	pager       Pager
	pagerOpts   []pager.Option
	maxICells   uint32
	logger      *zap.Logger
}

// Open opens the database file at path, creating it when missing.
func Open(ctx context.Context, logger *zap.Logger, path string, opts ...Option) (*Table, error) {
	aTable := newTable(logger, opts...)

	pagerOpts := append([]pager.Option{pager.WithLogger(logger)}, aTable.pagerOpts...)
	aPager, err := pager.Open(path, pagerOpts...)
	if err != nil {
		return nil, err
	}

	if err := aTable.init(ctx, aPager); err != nil {
		return nil, multierr.Append(err, aPager.Close(ctx))
	}

	return aTable, nil
}

// New creates a table on top of an already opened pager.
func New(ctx context.Context, logger *zap.Logger, aPager Pager, opts ...Option) (*Table, error) {
	aTable := newTable(logger, opts...)
	if err := aTable.init(ctx, aPager); err != nil {
		return nil, err
	}
	return aTable, nil
}

func newTable(logger *zap.Logger, opts ...Option) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	aTable := &Table{
		maxICells: node.InternalNodeMaxCells,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(aTable)
	}
	return aTable
}

func (t *Table) init(ctx context.Context, aPager Pager) error {
	t.pager = aPager
	t.RootPageIdx = aPager.Header().RootPage

	if aPager.TotalPages() == 0 {
		// Root leaf is allocated lazily by the first insert
		return nil
	}

	aRoot, err := t.getNode(ctx, t.RootPageIdx)
	if err != nil {
		return fmt.Errorf("load root page: %w", err)
	}
	if !aRoot.IsRoot() {
		return fmt.Errorf("%w: page %d is not marked as root", pager.ErrCorruptFile, t.RootPageIdx)
	}

	return nil
}

// Insert stores a row under its ID. Existing keys are never overwritten.
func (t *Table) Insert(ctx context.Context, aRow row.Row) error {
	if err := aRow.Validate(); err != nil {
		return err
	}

	if err := t.initRoot(ctx); err != nil {
		return err
	}

	aCursor, err := t.Seek(ctx, aRow.ID)
	if err != nil {
		return err
	}

	return aCursor.LeafNodeInsert(ctx, aRow.ID, aRow)
}

// Scan returns all rows ordered by ID.
func (t *Table) Scan(ctx context.Context) ([]row.Row, error) {
	aCursor, err := t.SeekFirst(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]row.Row, 0)
	for !aCursor.EndOfTable {
		aRow, err := aCursor.Row(ctx)
		if err != nil {
			return nil, err
		}
		rows = append(rows, aRow)

		if err := aCursor.Advance(ctx); err != nil {
			return nil, err
		}
	}

	return rows, nil
}

// Find looks up a single row by ID.
func (t *Table) Find(ctx context.Context, key uint32) (row.Row, bool, error) {
	aCursor, err := t.Seek(ctx, key)
	if err != nil {
		return row.Row{}, false, err
	}
	if aCursor.EndOfTable {
		return row.Row{}, false, nil
	}

	aNode, err := t.getNode(ctx, aCursor.PageIdx)
	if err != nil {
		return row.Row{}, false, err
	}
	if aNode.Leaf().Key(aCursor.CellIdx) != key {
		return row.Row{}, false, nil
	}

	aRow, err := aCursor.Row(ctx)
	if err != nil {
		return row.Row{}, false, err
	}
	return aRow, true, nil
}

// Close flushes all pages and the database header and closes the file.
func (t *Table) Close(ctx context.Context) error {
	t.logger.Debug("closing table", zap.Uint32("root_page", uint32(t.RootPageIdx)))
	return t.pager.Close(ctx)
}

// SeekFirst returns a cursor at the first cell of the leftmost leaf.
func (t *Table) SeekFirst(ctx context.Context) (*Cursor, error) {
	if t.pager.TotalPages() == 0 {
		return &Cursor{Table: t, PageIdx: t.RootPageIdx, EndOfTable: true}, nil
	}

	pageIdx := t.RootPageIdx
	for i, maxPages := uint32(0), t.pager.MaxPages(); i < maxPages; i++ {
		aNode, err := t.getNode(ctx, pageIdx)
		if err != nil {
			return nil, fmt.Errorf("seek first: %w", err)
		}
		if aNode.IsLeaf() {
			return &Cursor{
				Table:      t,
				PageIdx:    pageIdx,
				CellIdx:    0,
				EndOfTable: aNode.Leaf().NumCells() == 0,
			}, nil
		}
		pageIdx = aNode.Internal().Child(0)
	}

	return nil, fmt.Errorf("seek first: %w: tree deeper than %d pages", pager.ErrCorruptFile, t.pager.MaxPages())
}

// Seek the cursor for a key, if it does not exist then return the cursor
// for the page and cell where it should be inserted
func (t *Table) Seek(ctx context.Context, key uint32) (*Cursor, error) {
	if t.pager.TotalPages() == 0 {
		return &Cursor{Table: t, PageIdx: t.RootPageIdx, EndOfTable: true}, nil
	}

	pageIdx := t.RootPageIdx
	for i, maxPages := uint32(0), t.pager.MaxPages(); i < maxPages; i++ {
		aNode, err := t.getNode(ctx, pageIdx)
		if err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
		if aNode.IsLeaf() {
			aLeaf := aNode.Leaf()
			cellIdx := aLeaf.Search(key)
			return &Cursor{
				Table:      t,
				PageIdx:    pageIdx,
				CellIdx:    cellIdx,
				EndOfTable: cellIdx >= aLeaf.NumCells(),
			}, nil
		}
		anInternal := aNode.Internal()
		pageIdx = anInternal.Child(anInternal.IndexOfChild(key))
	}

	return nil, fmt.Errorf("seek: %w: tree deeper than %d pages", pager.ErrCorruptFile, t.pager.MaxPages())
}

// initRoot allocates page 0 as an empty root leaf when the file is empty.
func (t *Table) initRoot(ctx context.Context) error {
	if t.pager.TotalPages() > 0 {
		return nil
	}

	aNode, err := t.newNode(ctx, 0)
	if err != nil {
		return err
	}
	aNode.Leaf().Initialize()
	aNode.SetRoot(true)

	t.setRoot(0)

	return nil
}

func (t *Table) setRoot(pageIdx pager.PageIndex) {
	t.RootPageIdx = pageIdx
	header := t.pager.Header()
	header.RootPage = pageIdx
	t.pager.SaveHeader(header)
}

// getNode returns an existing node and rejects pages that could not have
// been written by the table.
func (t *Table) getNode(ctx context.Context, pageIdx pager.PageIndex) (node.Node, error) {
	if uint32(pageIdx) >= t.pager.TotalPages() {
		return nil, fmt.Errorf("%w: page %d out of bounds, total pages %d", pager.ErrCorruptFile, pageIdx, t.pager.TotalPages())
	}

	aPage, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return nil, err
	}
	aNode := node.FromPage(pageIdx, aPage)

	switch aNode.Type() {
	case node.TypeLeaf:
		if cells := aNode.Leaf().NumCells(); cells > node.LeafNodeMaxCells {
			return nil, fmt.Errorf("%w: leaf page %d has %d cells", pager.ErrCorruptFile, pageIdx, cells)
		}
	case node.TypeInternal:
		if keys := aNode.Internal().NumKeys(); keys > node.InternalNodeMaxCells {
			return nil, fmt.Errorf("%w: internal page %d has %d keys", pager.ErrCorruptFile, pageIdx, keys)
		}
	default:
		return nil, fmt.Errorf("%w: page %d has node type %s", pager.ErrCorruptFile, pageIdx, aNode.Type())
	}

	return aNode, nil
}

// newNode allocates a fresh page at the end of the file.
func (t *Table) newNode(ctx context.Context, pageIdx pager.PageIndex) (node.Node, error) {
	aPage, err := t.pager.GetPage(ctx, pageIdx)
	if err != nil {
		return nil, err
	}
	return node.FromPage(pageIdx, aPage), nil
}
