package dumpfile

import (
	"errors"
	"hash/crc32"
	"sync/atomic"

	"stripemap/fileio"
)

// IOType represents different kinds of file io backing a dump file.
type IOType uint8

const (
	// FileIO standard file io.
	FileIO IOType = iota
	// MMapIO memory-mapped io.
	MMapIO
)

var (
	// ErrEndOfFile no record starts at the given offset.
	ErrEndOfFile = errors.New("dumpfile: end of dump file")
	// ErrCorruptRecord the record checksum does not match its contents.
	ErrCorruptRecord = errors.New("dumpfile: record crc mismatch")
	// ErrUnsupportedIOType unknown IOType.
	ErrUnsupportedIOType = errors.New("dumpfile: io type is not supported")
	// ErrShortWrite the controller accepted fewer bytes than the record holds.
	ErrShortWrite = errors.New("dumpfile: fail to write the whole record")
	// ErrFileFull the record does not fit in the preallocated file.
	ErrFileFull = errors.New("dumpfile: dump file capacity exceeded")
)

// File is one snapshot dump on disk: a sequence of crc-checked records.
// Writes append at Offset; reads are positioned by the caller. Records never
// cross the preallocated size: standard file io would silently grow the file
// past what a later memory-mapped reader sees.
type File struct {
	Offset     int64
	size       int64
	controller fileio.Controller
}

// Open opens an existing or creates a new dump file at path, preallocated to
// size bytes.
func Open(path string, size int64, ioType IOType) (*File, error) {
	var controller fileio.Controller
	var err error
	switch ioType {
	case FileIO:
		controller, err = fileio.NewFileController(path, size)
	case MMapIO:
		controller, err = fileio.NewMMapController(path, size)
	default:
		return nil, ErrUnsupportedIOType
	}
	if err != nil {
		return nil, err
	}
	return &File{size: size, controller: controller}, nil
}

// WriteRecord encodes r and appends it at the current offset. Returns
// ErrFileFull when the record would not fit in the preallocated size.
func (f *File) WriteRecord(r *Record) error {
	buf, size := EncodeRecord(r)
	offset := atomic.LoadInt64(&f.Offset)
	if offset+int64(size) > f.size {
		return ErrFileFull
	}
	n, err := f.controller.Write(buf, offset)
	if err != nil {
		return err
	}
	if n != size {
		return ErrShortWrite
	}
	atomic.AddInt64(&f.Offset, int64(size))
	return nil
}

// ReadRecord reads the record starting at offset. It returns the record and
// its total on-disk size, ErrEndOfFile when offset points past the last
// record, or ErrCorruptRecord when the checksum does not match.
func (f *File) ReadRecord(offset int64) (*Record, int, error) {
	headerBuf := make([]byte, MaxHeaderSize)
	if _, err := f.controller.Read(headerBuf, offset); err != nil {
		return nil, 0, ErrEndOfFile
	}
	r, headerSize := decodeHeader(headerBuf)
	// the preallocated tail of the file is zero-filled
	if r.crc == 0 && r.ksize == 0 && r.vsize == 0 {
		return nil, 0, ErrEndOfFile
	}

	// bound the decoded sizes before allocating: a corrupt header must not
	// drive a multi-gigabyte allocation
	if offset+int64(headerSize)+int64(r.ksize)+int64(r.vsize) > f.size {
		return nil, 0, ErrCorruptRecord
	}
	ksize, vsize := int(r.ksize), int(r.vsize)
	size := headerSize + ksize + vsize
	if ksize > 0 || vsize > 0 {
		kvBuf := make([]byte, ksize+vsize)
		if _, err := f.controller.Read(kvBuf, offset+int64(headerSize)); err != nil {
			return nil, 0, err
		}
		r.Key = kvBuf[:ksize]
		r.Value = kvBuf[ksize:]
	}

	if crc := recordCrc(r, headerBuf[crc32.Size:headerSize]); crc != r.crc {
		return nil, 0, ErrCorruptRecord
	}
	return r, size, nil
}

// Sync commits the file contents to stable storage.
func (f *File) Sync() error {
	return f.controller.Sync()
}

// Close closes the underlying controller.
func (f *File) Close() error {
	return f.controller.Close()
}

// Delete removes the dump file from disk.
func (f *File) Delete() error {
	return f.controller.Delete()
}
