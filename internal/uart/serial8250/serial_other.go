// internal/uart/serial8250/serial_other.go

//go:build !linux

package serial8250

import "errors"

var errUnsupported = errors.New("serial8250: serial_struct ioctls need linux")

type noIoctl struct{}

func (noIoctl) get(string) (serialStruct, error) { return serialStruct{}, errUnsupported }

func (noIoctl) set(string, serialStruct) error { return errUnsupported }

func defaultIoctl() serialIoctl { return noIoctl{} }
