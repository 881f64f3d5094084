//go:build windows

package layer

// Windows symlink resolution doesn't surface ELOOP the same way; treat any
// EvalSymlinks failure past this point as a missing path rather than a loop.
func isELOOP(err error) bool {
	return false
}
