// Package scan discovers the audio files a run will process.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// audioExtensions are the file types accepted for discovery. Handling
// still dispatches on the detected container; the extension only gates
// which files enter the batch.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
}

// Supported reports whether path carries an accepted audio extension.
func Supported(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Discover expands files and directories into the ordered, de-duplicated
// list of audio files to process. Directories are walked recursively in
// lexical order; explicitly named files must carry an accepted extension.
func Discover(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}

		if !info.IsDir() {
			if !Supported(path) {
				return nil, fmt.Errorf("unsupported file type %q (accepted: .mp3, .wav, .ogg, .flac, .m4a)", filepath.Ext(path))
			}
			add(path)
			continue
		}

		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if !fi.IsDir() && Supported(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("error walking directory %s: %w", path, err)
		}
	}

	return files, nil
}
