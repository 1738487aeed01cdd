// Package shm provides helpers for dealing with shared memory.
package shm

import (
	"os"

	"golang.org/x/sys/unix"
)

// Create returns a file suitable for sharing memory between
// processes. The file has no name, so it lives only as long as open
// descriptors to it do.
func Create() (*os.File, error) {
	file, err := os.CreateTemp("/dev/shm", "nest-*")
	if err != nil {
		return nil, err
	}

	return file, os.Remove(file.Name())
}

// Mmap is a mapped region of a file.
type Mmap []byte

// MapShared maps size bytes of file with MAP_SHARED, so that writes
// through the mapping are visible to everyone else with the file
// open.
func MapShared(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
