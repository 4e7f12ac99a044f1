//go:build !unix

package transfer

import "io/fs"

// Without access(2) the permission bits are the best available signal.

func canRead(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o444 != 0
}

func canWrite(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o222 != 0
}

func canWriteDir(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o222 != 0
}
