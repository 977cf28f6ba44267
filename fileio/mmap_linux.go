package fileio

import (
	"os"
	"unsafe"

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
// unix.Munmap only unmaps addresses it has itself handed out; calling the
// syscall directly keeps this independent of that bookkeeping.
func mUnmap(b []byte) error {
	if len(b) == 0 || len(b) != cap(b) {
		return unix.EINVAL
	}
	_, _, err := unix.Syscall(
		unix.SYS_MUNMAP,
		uintptr(unsafe.Pointer(&b[0])),
		uintptr(len(b)),
		0,
	)
	if err != 0 {
		return err
	}
	return nil
}

// mSync flushes the mapped data to disk.
func mSync(b []byte) error {
	return unix.Msync(b, unix.MS_SYNC)
}
