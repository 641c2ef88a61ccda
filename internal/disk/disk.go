package disk

import "syscall"

// GetDiskUsage returns the used percentage, free bytes, and total bytes of
// the filesystem holding path.
func GetDiskUsage(path string) (usedPercent float64, freeBytes int64, totalBytes int64, err error) {
	var stat syscall.Statfs_t
	err = syscall.Statfs(path, &stat)
	if err != nil {
		return 0, 0, 0, err
	}

	totalBytes = int64(stat.Blocks) * int64(stat.Bsize)
	freeBytes = int64(stat.Bavail) * int64(stat.Bsize)
	usedBytes := totalBytes - freeBytes

	if totalBytes > 0 {
		usedPercent = (float64(usedBytes) / float64(totalBytes)) * 100.0
	}

	return usedPercent, freeBytes, totalBytes, nil
}

// GetFreePercent returns the percentage of free disk space for path.
func GetFreePercent(path string) (float64, error) {
	usedPercent, _, _, err := GetDiskUsage(path)
	if err != nil {
		return 0, err
	}
	return 100.0 - usedPercent, nil
}
