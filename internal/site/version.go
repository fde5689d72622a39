package site

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/albapepper/fantasy-history/internal/config"
)

// versionCandidates are checked in order; the first file that exists
// versions the data set.
var versionCandidates = []string{config.AllTimeFile, config.ChampionsFile, config.RecordsFile}

// DataVersion identifies the metrics the site was built from.
type DataVersion struct {
	File     string    `json:"file"`
	Version  string    `json:"version"` // first 8 hex digits of the file's MD5
	Modified time.Time `json:"modified"`
}

// ComputeDataVersion returns the version of the first candidate file in
// dir, or nil if none exist.
func ComputeDataVersion(dir string) (*DataVersion, error) {
	for _, name := range versionCandidates {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return &DataVersion{
			File:     name,
			Version:  ShortHash(data),
			Modified: info.ModTime().UTC().Truncate(time.Second),
		}, nil
	}
	return nil, nil
}

// ShortHash returns the first 8 hex digits of the MD5 digest of data.
func ShortHash(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])[:8]
}
