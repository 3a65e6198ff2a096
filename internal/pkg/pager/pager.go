package pager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	PageSize = 4096 // 4 kilobytes
	MaxPages = 100  // hard ceiling, the page cache never evicts
)

var (
	ErrTableFull   = fmt.Errorf("table full")
	ErrCorruptFile = fmt.Errorf("corrupt database file")
)

type PageIndex uint32

type DBFile interface {
	io.ReadSeeker
	io.ReaderAt
	io.WriterAt
	io.Closer
}

type Option func(*Pager)

func WithMaxPages(maxPages uint32) Option {
	return func(p *Pager) {
		if maxPages > 0 {
			p.maxPages = maxPages
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pager) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pager owns the database file and every page buffer loaded from it.
// pages is a sparse table where slice index = page index, nil entries are
// pages that exist in the file but were not loaded yet.
type Pager struct {
	maxPages   uint32
	totalPages uint32 // one past the highest known page

	dbHeader DatabaseHeader
	pages    [][]byte

	file     DBFile
	fileSize int64
	closed   bool

	logger *zap.Logger
}

// Open opens or creates the database file at path.
func Open(path string, opts ...Option) (*Pager, error) {
	dbFile, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}

	aPager, err := New(dbFile, opts...)
	if err != nil {
		return nil, multierr.Append(err, dbFile.Close())
	}

	return aPager, nil
}

// New opens the database file and reads the database header if the file
// is not empty.
func New(file DBFile, opts ...Option) (*Pager, error) {
	aPager := &Pager{
		maxPages: MaxPages,
		file:     file,
		logger:   zap.NewNop(),
		dbHeader: DatabaseHeader{
			Version:  headerVersion,
			PageSize: PageSize,
		},
	}
	for _, opt := range opts {
		opt(aPager)
	}
	aPager.pages = make([][]byte, 0, aPager.maxPages)

	fileSize, err := aPager.file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	aPager.fileSize = fileSize

	// Basic check to verify file size is a multiple of page size (4096B)
	if fileSize%PageSize != 0 {
		return nil, fmt.Errorf("%w: db file size is not divisible by page size: %d", ErrCorruptFile, fileSize)
	}

	totalPages := fileSize / PageSize
	if totalPages > int64(aPager.maxPages) {
		return nil, fmt.Errorf("%w: file has %d pages, max pages limit is %d", ErrCorruptFile, totalPages, aPager.maxPages)
	}
	aPager.totalPages = uint32(totalPages)

	// If file is not empty, read the DB header from the first page
	if aPager.totalPages > 0 {
		buf := make([]byte, RootPageConfigSize)
		if _, err := aPager.file.ReadAt(buf, 0); err != nil {
			return nil, fmt.Errorf("read database header: %w", err)
		}

		if err := UnmarshalDatabaseHeader(buf, &aPager.dbHeader); err != nil {
			return nil, err
		}
	}

	aPager.logger.Debug(
		"pager opened",
		zap.Int64("file_size", fileSize),
		zap.Uint32("total_pages", aPager.totalPages),
		zap.Uint32("root_page", uint32(aPager.dbHeader.RootPage)),
	)

	return aPager, nil
}

func (p *Pager) TotalPages() uint32 {
	return p.totalPages
}

func (p *Pager) MaxPages() uint32 {
	return p.maxPages
}

// UnusedPageIdx returns the index of the next page that was never allocated.
// Pages are never freed so this is simply the page counter.
func (p *Pager) UnusedPageIdx() PageIndex {
	return PageIndex(p.totalPages)
}

func (p *Pager) Header() DatabaseHeader {
	return p.dbHeader
}

func (p *Pager) SaveHeader(header DatabaseHeader) {
	p.dbHeader = header
}

// GetPage returns the buffer of a page, loading it from the file on the
// first access or allocating a zero filled page past the end of the file.
// The returned slice stays valid until the pager is closed.
func (p *Pager) GetPage(ctx context.Context, pageIdx PageIndex) ([]byte, error) {
	if p.closed {
		return nil, fmt.Errorf("get page %d: pager is closed", pageIdx)
	}

	if uint32(pageIdx) >= p.maxPages {
		return nil, fmt.Errorf("%w: page index %d reached limit of max pages %d", ErrTableFull, pageIdx, p.maxPages)
	}

	if int(pageIdx) < len(p.pages) && p.pages[pageIdx] != nil {
		return p.pages[pageIdx], nil
	}

	buf := make([]byte, PageSize)

	if int64(pageIdx) < p.fileSize/PageSize {
		// Page exists in the file, a short read leaves the tail zero padded
		_, err := p.file.ReadAt(buf, int64(pageIdx)*PageSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read page %d: %w", pageIdx, err)
		}
	}

	// Extend sparse table with nil entries to accommodate pageIdx
	for i := len(p.pages); i < int(pageIdx)+1; i++ {
		p.pages = append(p.pages, nil)
	}
	p.pages[pageIdx] = buf

	if uint32(pageIdx) >= p.totalPages {
		p.totalPages = uint32(pageIdx) + 1
	}

	return buf, nil
}

// Flush writes a loaded page back to the file. Page 0 gets the database
// header written into its reserved prefix first.
func (p *Pager) Flush(ctx context.Context, pageIdx PageIndex) error {
	if int(pageIdx) >= len(p.pages) || p.pages[pageIdx] == nil {
		return nil
	}

	buf := p.pages[pageIdx]
	if pageIdx == 0 {
		if _, err := p.dbHeader.Marshal(buf[0:RootPageConfigSize]); err != nil {
			return fmt.Errorf("error flushing page %d: %w", pageIdx, err)
		}
	}

	if _, err := p.file.WriteAt(buf, int64(pageIdx)*PageSize); err != nil {
		return fmt.Errorf("error flushing page %d: %w", pageIdx, err)
	}

	return nil
}

// Close flushes every loaded page and closes the file. There is no other
// flush, pages not written here are lost.
func (p *Pager) Close(ctx context.Context) error {
	if p.closed {
		return fmt.Errorf("pager already closed")
	}
	p.closed = true

	var err error
	for idx := range p.pages {
		err = multierr.Append(err, p.Flush(ctx, PageIndex(idx)))
	}

	// Header changes must be persisted even when page 0 itself was never loaded
	if p.totalPages > 0 && (len(p.pages) == 0 || p.pages[0] == nil) {
		err = multierr.Append(err, p.flushHeader())
	}

	err = multierr.Append(err, p.file.Close())

	p.logger.Debug(
		"pager closed",
		zap.Uint32("total_pages", p.totalPages),
		zap.Uint32("root_page", uint32(p.dbHeader.RootPage)),
		zap.Error(err),
	)

	return err
}

func (p *Pager) flushHeader() error {
	headerBytes, err := p.dbHeader.Marshal(nil)
	if err != nil {
		return err
	}
	if _, err := p.file.WriteAt(headerBytes, 0); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	return nil
}
