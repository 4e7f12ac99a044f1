//go:build unix

package transfer

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

func canRead(path string, _ fs.FileInfo) bool {
	return unix.Access(path, unix.R_OK) == nil
}

func canWrite(path string, _ fs.FileInfo) bool {
	return unix.Access(path, unix.W_OK) == nil
}

func canWriteDir(path string, _ fs.FileInfo) bool {
	return unix.Access(path, unix.W_OK|unix.X_OK) == nil
}
