package pager

import (
	"bytes"
	"fmt"
)

const (
	// RootPageConfigSize is the number of bytes reserved for the database
	// header at the start of page 0. The rest of page 0 is used as a normal page.
	RootPageConfigSize = 100

	headerVersion = 1
)

var headerMagic = [8]byte{'t', 'i', 'n', 'y', 's', 'q', 'l', 0}

// DatabaseHeader is persisted at the head of page 0 so the table can find
// its root after a reopen.
type DatabaseHeader struct {
	Version  uint32
	PageSize uint32
	RootPage PageIndex
}

func (h *DatabaseHeader) Size() uint64 {
	return RootPageConfigSize
}

func (h *DatabaseHeader) Marshal(buf []byte) ([]byte, error) {
	size := h.Size()
	if uint64(cap(buf)) >= size {
		buf = buf[:size]
	} else {
		buf = make([]byte, size)
	}
	clear(buf)

	copy(buf[0:8], headerMagic[:])
	marshalUint32(buf, h.Version, 8)
	marshalUint32(buf, h.PageSize, 12)
	marshalUint32(buf, uint32(h.RootPage), 16)

	return buf, nil
}

func UnmarshalDatabaseHeader(buf []byte, dbHeader *DatabaseHeader) error {
	if len(buf) < RootPageConfigSize {
		return fmt.Errorf("%w: database header too short", ErrCorruptFile)
	}
	if !bytes.Equal(buf[0:8], headerMagic[:]) {
		return fmt.Errorf("%w: bad header magic %q", ErrCorruptFile, buf[0:8])
	}

	dbHeader.Version = unmarshalUint32(buf, 8)
	dbHeader.PageSize = unmarshalUint32(buf, 12)
	dbHeader.RootPage = PageIndex(unmarshalUint32(buf, 16))

	if dbHeader.Version != headerVersion {
		return fmt.Errorf("%w: unsupported format version %d", ErrCorruptFile, dbHeader.Version)
	}
	if dbHeader.PageSize != PageSize {
		return fmt.Errorf("%w: page size %d, expected %d", ErrCorruptFile, dbHeader.PageSize, PageSize)
	}

	return nil
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
