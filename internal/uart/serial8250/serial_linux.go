// internal/uart/serial8250/serial_linux.go

//go:build linux

package serial8250

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

type ttyIoctl struct{}

func (ttyIoctl) get(path string) (serialStruct, error) {
	var ss serialStruct
	err := withTTY(path, func(fd uintptr) error {
		return ioctl(fd, unix.TIOCGSERIAL, &ss)
	})
	if err != nil {
		return serialStruct{}, fmt.Errorf("serial8250: TIOCGSERIAL %s: %w", path, err)
	}
	return ss, nil
}

func (ttyIoctl) set(path string, ss serialStruct) error {
	err := withTTY(path, func(fd uintptr) error {
		return ioctl(fd, unix.TIOCSSERIAL, &ss)
	})
	if err != nil {
		return fmt.Errorf("serial8250: TIOCSSERIAL %s: %w", path, err)
	}
	return nil
}

func withTTY(path string, fn func(fd uintptr) error) error {
	// O_NONBLOCK: do not wait for carrier on a port with no hardware yet.
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f.Fd())
}

func ioctl(fd uintptr, req uint, ss *serialStruct) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(unsafe.Pointer(ss)))
	if errno != 0 {
		return errno
	}
	return nil
}

func defaultIoctl() serialIoctl { return ttyIoctl{} }
