//go:build linux

package mailbox

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// openMailboxRegion maps a PCI resource file with unix.Mmap. Resource files
// exported by the kernel under /sys/bus/pci/devices/.../resourceN are
// PROT_READ|PROT_WRITE, MAP_SHARED mappable and give userspace the same MMIO
// access amdxdna_mailbox.c gets in-kernel via pcim_iomap.
func openMailboxRegion(path string, size uint64) (RegionMap, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return RegionMap{}, fmt.Errorf("mailbox: open resource file: %w", err)
	}
	defer f.Close()

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return RegionMap{}, fmt.Errorf("mailbox: mmap %s: %w", path, err)
	}

	return RegionMap{
		Base: uintptr(unsafe.Pointer(&data[0])),
		Size: size,
		unmap: func() error {
			return unix.Munmap(data)
		},
	}, nil
}
