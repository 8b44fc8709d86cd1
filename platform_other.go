//go:build !linux

package mailbox

// openMailboxRegion has no implementation outside Linux: PCI resource files
// under /sys/bus/pci/devices are a sysfs convention with no equivalent
// exposed to userspace on other platforms. Callers on those platforms must
// obtain the mailbox and ring-buffer base addresses through some other
// PCIe-discovery mechanism and construct RegionMap values directly.
func openMailboxRegion(path string, size uint64) (RegionMap, error) {
	return RegionMap{}, errUnsupportedPlatform
}
