package fileio

import (
	"errors"
	"os"
)

// FilePerm default permission of a newly created dump file.
const FilePerm = 0644

// ErrInvalidSize invalid preallocation size.
var ErrInvalidSize = errors.New("fileio: size must be positive")

// Controller abstracts the byte-level access to one dump file. Record
// encoding and decoding happen above it.
type Controller interface {
	// Write a slice at offset.
	// It returns the number of bytes written and any error encountered.
	Write(b []byte, offset int64) (int, error)

	// Read a slice from offset.
	// It returns the number of bytes read and any error encountered.
	Read(b []byte, offset int64) (int, error)

	// Sync commits the current contents of the file to stable storage.
	Sync() error

	// Close closes the file.
	Close() error

	// Delete removes the file from disk.
	Delete() error
}

// FileController accesses the file through standard file IO.
type FileController struct {
	fd *os.File
}

// NewFileController opens (or creates) name, grown to at least size bytes.
func NewFileController(name string, size int64) (Controller, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	fd, err := openFile(name, size)
	if err != nil {
		return nil, err
	}
	return &FileController{fd: fd}, nil
}

func (f *FileController) Write(b []byte, offset int64) (int, error) {
	return f.fd.WriteAt(b, offset)
}

func (f *FileController) Read(b []byte, offset int64) (int, error) {
	return f.fd.ReadAt(b, offset)
}

func (f *FileController) Sync() error {
	return f.fd.Sync()
}

func (f *FileController) Close() error {
	return f.fd.Close()
}

func (f *FileController) Delete() error {
	if err := f.fd.Close(); err != nil {
		return err
	}
	return os.Remove(f.fd.Name())
}

// open file and truncate it up to size if necessary.
func openFile(name string, size int64) (*os.File, error) {
	fd, err := os.OpenFile(name, os.O_CREATE|os.O_RDWR, FilePerm)
	if err != nil {
		return nil, err
	}

	stat, err := fd.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() < size {
		if err := fd.Truncate(size); err != nil {
			return nil, err
		}
	}
	return fd, nil
}
