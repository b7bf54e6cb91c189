package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxItems is the number of scratch buffers kept in the free list
const maxItems = 256

// binaryFreeList holds scratch buffers with a cap of 8, enough for any of
// the integers serialized here
var binaryFreeList = make(chan []byte, maxItems)

// Borrow returns an 8 byte buffer from the free list, allocating one if
// the list is empty
func Borrow() []byte {
	var buf []byte
	select {
	case buf = <-binaryFreeList:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

// Return puts buf back on the free list. buf must have been obtained
// through Borrow.
func Return(buf []byte) {
	select {
	case binaryFreeList <- buf:
	default:
	}
}

// Uint8 reads a single byte from r
func Uint8(r io.Reader) (uint8, error) {
	buf := Borrow()[:1]
	defer Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, errors.WithStack(err)
	}
	return buf[0], nil
}

// Uint32 reads a little-endian uint32 from r
func Uint32(r io.Reader) (uint32, error) {
	buf := Borrow()[:4]
	defer Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// PutUint8 writes val to w
func PutUint8(w io.Writer, val uint8) error {
	buf := Borrow()[:1]
	defer Return(buf)
	buf[0] = val
	_, err := w.Write(buf)
	return errors.WithStack(err)
}

// PutUint32 writes val to w as a little-endian uint32
func PutUint32(w io.Writer, val uint32) error {
	buf := Borrow()[:4]
	defer Return(buf)
	binary.LittleEndian.PutUint32(buf, val)
	_, err := w.Write(buf)
	return errors.WithStack(err)
}

// Bytes reads a uint32 length prefixed byte slice from r, refusing lengths
// above maxLength
func Bytes(r io.Reader, maxLength uint32) ([]byte, error) {
	length, err := Uint32(r)
	if err != nil {
		return nil, err
	}
	if length > maxLength {
		return nil, errors.Errorf("byte slice length %d exceeds the maximum of %d", length, maxLength)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.WithStack(err)
	}
	return data, nil
}

// PutBytes writes data to w prefixed by its uint32 length
func PutBytes(w io.Writer, data []byte) error {
	err := PutUint32(w, uint32(len(data)))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.WithStack(err)
}
