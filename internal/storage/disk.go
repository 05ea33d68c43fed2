package storage

import "os"

// FileSizeBytes returns the total size in bytes of the given files.
// Empty or missing paths contribute 0. SQLite keeps "-wal" and "-shm" siblings,
// so callers pass those alongside the database path.
func FileSizeBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
