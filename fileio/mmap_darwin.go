package fileio

import (
	"os"

	"golang.org/x/sys/unix"
)

// mMap memory-maps fd. If writable is true the pages may be written to as
// well as read.
func mMap(fd *os.File, writable bool, size int64) ([]byte, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	return unix.Mmap(int(fd.Fd()), 0, int(size), prot, unix.MAP_SHARED)
}

// mUnmap unmaps a mapped slice.
func mUnmap(b []byte) error {
	return unix.Munmap(b)
}

// mSync flushes the mapped data to disk.
func mSync(b []byte) error {
	return unix.Msync(b, unix.MS_SYNC)
}
