package shm

import (
	"bytes"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCreateAndMap(t *testing.T) {
	file, err := Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer file.Close()

	const size = 4096
	if err := file.Truncate(size); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	w, err := MapShared(file, size, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		t.Fatalf("map writable: %v", err)
	}
	defer w.Unmap()
	if len(w) != size {
		t.Fatalf("len = %v, want %v", len(w), size)
	}

	r, err := MapShared(file, size, unix.PROT_READ)
	if err != nil {
		t.Fatalf("map readable: %v", err)
	}
	defer r.Unmap()

	copy(w, []byte("shared memory"))
	if !bytes.Equal(r[:13], []byte("shared memory")) {
		t.Fatalf("second mapping reads %q, want %q", r[:13], "shared memory")
	}
}

func TestMapGrows(t *testing.T) {
	file, err := Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer file.Close()

	if err := file.Truncate(1024); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	small, err := MapShared(file, 1024, unix.PROT_READ)
	if err != nil {
		t.Fatalf("map: %v", err)
	}

	// The file stays mappable at a bigger size after growing, with
	// the old mapping still valid until it is unmapped.
	if err := file.Truncate(4096); err != nil {
		t.Fatalf("grow: %v", err)
	}
	big, err := MapShared(file, 4096, unix.PROT_READ)
	if err != nil {
		t.Fatalf("map after grow: %v", err)
	}
	defer big.Unmap()

	if len(small) != 1024 || len(big) != 4096 {
		t.Fatalf("len(small) = %v, len(big) = %v", len(small), len(big))
	}
	if err := small.Unmap(); err != nil {
		t.Fatalf("unmap old mapping: %v", err)
	}
}
