package fileio

import (
	"io"
	"os"
)

// MMapController accesses the file through a memory mapping. Dump files are
// read back sequentially, so the mapping is advised for sequential access.
type MMapController struct {
	fd     *os.File
	buf    []byte
	bufLen int64
}

// NewMMapController opens (or creates) name, grown to at least size bytes,
// and maps it writable.
func NewMMapController(name string, size int64) (Controller, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	fd, err := openFile(name, size)
	if err != nil {
		return nil, err
	}
	buf, err := mMap(fd, true, size)
	if err != nil {
		return nil, err
	}
	return &MMapController{fd: fd, buf: buf, bufLen: int64(len(buf))}, nil
}

// Write copies b into the mapped region at offset.
func (m *MMapController) Write(b []byte, offset int64) (int, error) {
	length := int64(len(b))
	if length <= 0 {
		return 0, nil
	}
	if offset < 0 || offset+length > m.bufLen {
		return 0, io.EOF
	}
	return copy(m.buf[offset:], b), nil
}

// Read copies the mapped region at offset into b.
func (m *MMapController) Read(b []byte, offset int64) (int, error) {
	length := int64(len(b))
	if offset < 0 || offset >= m.bufLen || offset+length > m.bufLen {
		return 0, io.EOF
	}
	return copy(b, m.buf[offset:]), nil
}

// Sync flushes the mapped region to the file on disk.
func (m *MMapController) Sync() error {
	return mSync(m.buf)
}

func (m *MMapController) Close() error {
	if err := mSync(m.buf); err != nil {
		return err
	}
	if err := mUnmap(m.buf); err != nil {
		return err
	}
	return m.fd.Close()
}

func (m *MMapController) Delete() error {
	if err := mUnmap(m.buf); err != nil {
		return err
	}
	m.buf = nil
	if err := m.fd.Truncate(0); err != nil {
		return err
	}
	if err := m.fd.Close(); err != nil {
		return err
	}
	return os.Remove(m.fd.Name())
}
