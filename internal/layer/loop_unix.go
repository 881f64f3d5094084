//go:build !windows

package layer

import (
	"errors"
	"syscall"
)

func isELOOP(err error) bool {
	return errors.Is(err, syscall.ELOOP)
}
