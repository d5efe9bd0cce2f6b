package ui

import (
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create snapshot dir")
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errdef.Wrap(errdef.CodeFilesystem, err, "create snapshot")
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errdef.Wrap(errdef.CodeRender, err, "encode snapshot")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errdef.Wrap(errdef.CodeFilesystem, err, "close snapshot")
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errdef.Wrap(errdef.CodeFilesystem, err, "save snapshot")
	}
	return nil
}
