// checksum.go: SHA-256 sidecar generation for rotated log files.
//
// Grounded on the teacher's generateChecksum (rotation.go): runs in the
// background worker pool, tolerates the target file already having been
// compressed by a racing compress task, and writes a "hash  basename\n"
// sidecar in the sha256sum(1) format.
package halog

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func generateChecksum(path string, onError func(component string, err error)) {
	report := func(component string, err error) {
		if onError != nil {
			onError(component, err)
		}
	}

	target := path
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) && !strings.HasSuffix(target, ".gz") {
			if _, gzErr := os.Stat(target + ".gz"); gzErr == nil {
				target += ".gz"
			} else {
				report("checksum_missing", fmt.Errorf("file not found for checksum: %s", path))
				return
			}
		} else {
			report("checksum_stat", err)
			return
		}
	}

	f, err := os.Open(target)
	if err != nil {
		report("checksum_open", err)
		return
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		report("checksum_read", err)
		return
	}

	line := fmt.Sprintf("%x  %s\n", hash.Sum(nil), filepath.Base(target))
	if err := os.WriteFile(target+".sha256", []byte(line), 0o600); err != nil {
		report("checksum_write", err)
	}
}
