//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package system

import (
	"bytes"

	"golang.org/x/sys/unix"
)

// unameVersion reports the kernel release and version, or an empty string if
// uname fails.
func unameVersion() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	release := bytes.TrimRight(u.Release[:], "\x00")
	version := bytes.TrimRight(u.Version[:], "\x00")
	return string(release) + " " + string(version)
}
