package dumpfile

import (
	"encoding/binary"
	"hash/crc32"
)

// MaxHeaderSize crc32 + two uvarint sizes.
const MaxHeaderSize = crc32.Size + binary.MaxVarintLen32*2

// Record is one key-value pair as laid out in a dump file.
type Record struct {
	crc   uint32 // checksum over everything after the crc field
	ksize uint32
	vsize uint32
	Key   []byte
	Value []byte
}

// EncodeRecord encodes a Record into its binary form and returns it together
// with its total size.
//
//	+-------+-------+-------+-----+-------+
//	|  crc  | ksize | vsize | key | value |
//	+-------+-------+-------+-----+-------+
//	|---------HEADER--------|
func EncodeRecord(r *Record) ([]byte, int) {
	header := make([]byte, MaxHeaderSize)
	idx := crc32.Size
	idx += binary.PutUvarint(header[idx:], uint64(len(r.Key)))
	idx += binary.PutUvarint(header[idx:], uint64(len(r.Value)))

	size := idx + len(r.Key) + len(r.Value)
	buf := make([]byte, size)
	copy(buf, header[:idx])
	copy(buf[idx:], r.Key)
	copy(buf[idx+len(r.Key):], r.Value)

	crc := crc32.ChecksumIEEE(buf[crc32.Size:])
	binary.LittleEndian.PutUint32(buf[:crc32.Size], crc)
	return buf, size
}

// decodeHeader decodes the fixed part of a record and returns the header
// size. Key and value are read separately once their sizes are known.
func decodeHeader(buf []byte) (*Record, int) {
	r := &Record{crc: binary.LittleEndian.Uint32(buf[:crc32.Size])}
	idx := crc32.Size
	ksize, n := binary.Uvarint(buf[idx:])
	idx += n
	vsize, n := binary.Uvarint(buf[idx:])
	idx += n
	r.ksize = uint32(ksize)
	r.vsize = uint32(vsize)
	return r, idx
}

// recordCrc computes the checksum of a decoded record: the header bytes after
// the crc field, then key, then value.
func recordCrc(r *Record, headerTail []byte) uint32 {
	crc := crc32.ChecksumIEEE(headerTail)
	crc = crc32.Update(crc, crc32.IEEETable, r.Key)
	crc = crc32.Update(crc, crc32.IEEETable, r.Value)
	return crc
}
