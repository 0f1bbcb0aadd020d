// Package archive expands the xz compressed NetCDF files tide models ship as.
package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/ulikunitz/xz"
)

const (
	// CompressedSuffix selects the files to expand.
	CompressedSuffix = ".nc.xz"
	xzSuffix         = ".xz"
)

// ErrNotDirectory is returned when the folder argument is not a directory.
var ErrNotDirectory = errors.New("not a valid folder")

// DecompressAll expands every *.nc.xz file directly inside folder to the same
// path without the .xz suffix, replacing existing files. Files that fail are
// logged and skipped. The produced paths are returned in directory order.
func DecompressAll(folder string) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %q", ErrNotDirectory, folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var produced []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), CompressedSuffix) {
			continue
		}

		src := filepath.Join(folder, e.Name())
		dst := strings.TrimSuffix(src, xzSuffix)

		if err := DecompressFile(src, dst); err != nil {
			log.Error().
				Err(err).
				Str("source", src).
				Msg("Failed to decompress")
			continue
		}

		log.Info().Str("path", dst).Msg("Decompressed")
		produced = append(produced, dst)
	}

	return produced, nil
}

// DecompressFile streams one xz file to dst. A failed dst is removed.
func DecompressFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	r, err := xz.NewReader(bufio.NewReader(in))
	if err != nil {
		return fmt.Errorf("open xz stream: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := out.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, r); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	return nil
}
