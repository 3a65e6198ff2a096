package row

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	IDSize       = 4
	UsernameSize = 32
	EmailSize    = 255

	IDOffset       = 0
	UsernameOffset = IDOffset + IDSize
	EmailOffset    = UsernameOffset + UsernameSize

	// Size is the serialized size of a row, every row takes exactly this many bytes.
	Size = IDSize + UsernameSize + EmailSize
)

var (
	ErrStringTooLong = fmt.Errorf("string is too long")
	ErrInvalidString = fmt.Errorf("string contains NUL byte")
)

// Row is the single fixed record shape stored in a table. ID is the key.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

func (r Row) String() string {
	return fmt.Sprintf("(%d, %s, %s)", r.ID, r.Username, r.Email)
}

// Validate checks the text fields fit their fixed capacity. Fields are NUL
// padded on disk so a NUL byte inside a field would not survive a round trip.
func (r Row) Validate() error {
	if len(r.Username) > UsernameSize {
		return fmt.Errorf("%w: username has %d bytes, max %d", ErrStringTooLong, len(r.Username), UsernameSize)
	}
	if len(r.Email) > EmailSize {
		return fmt.Errorf("%w: email has %d bytes, max %d", ErrStringTooLong, len(r.Email), EmailSize)
	}
	if strings.IndexByte(r.Username, 0) >= 0 || strings.IndexByte(r.Email, 0) >= 0 {
		return ErrInvalidString
	}
	return nil
}

// Marshal writes the row into buf, which is reused when it has enough
// capacity, and returns the Size long slice holding the row.
func (r Row) Marshal(buf []byte) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if cap(buf) >= Size {
		buf = buf[:Size]
	} else {
		buf = make([]byte, Size)
	}

	marshalUint32(buf, r.ID, IDOffset)
	putPadded(buf[UsernameOffset:UsernameOffset+UsernameSize], r.Username)
	putPadded(buf[EmailOffset:EmailOffset+EmailSize], r.Email)

	return buf, nil
}

func (r *Row) Unmarshal(buf []byte) (uint64, error) {
	if len(buf) < Size {
		return 0, fmt.Errorf("row buffer too short: %d bytes, need %d", len(buf), Size)
	}

	r.ID = unmarshalUint32(buf, IDOffset)
	r.Username = trimPadding(buf[UsernameOffset : UsernameOffset+UsernameSize])
	r.Email = trimPadding(buf[EmailOffset : EmailOffset+EmailSize])

	return Size, nil
}

func putPadded(dst []byte, s string) {
	n := copy(dst, s)
	clear(dst[n:])
}

func trimPadding(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
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
