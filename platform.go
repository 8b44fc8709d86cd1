package mailbox

import "errors"

// errUnsupportedPlatform is returned by OpenMailboxRegion on platforms that
// have no sysfs-style PCI resource file convention.
var errUnsupportedPlatform = errors.New("mailbox: PCI resource mapping not supported on this platform")

// RegionMap is a memory-mapped MMIO region, obtained by mapping the resource
// file the PCIe device probe exposes for the mailbox or ring-buffer BAR.
//
// The transport itself never opens a RegionMap: Mailbox and Channel only
// ever consume the uintptr it produces (per spec.md's external-collaborator
// boundary for MMIO discovery). OpenMailboxRegion exists so a standalone
// caller of this module has one real way to obtain that address without
// writing platform code of its own.
type RegionMap struct {
	Base uintptr
	Size uint64

	unmap func() error
}

// Close unmaps the region.
func (r *RegionMap) Close() error {
	if r.unmap == nil {
		return nil
	}
	unmap := r.unmap
	r.unmap = nil
	return unmap()
}

// OpenMailboxRegion maps size bytes of the PCI resource file at path
// (e.g. /sys/bus/pci/devices/0000:00:1b.0/resource0) into the process
// address space for MMIO access.
func OpenMailboxRegion(path string, size uint64) (RegionMap, error) {
	return openMailboxRegion(path, size)
}
