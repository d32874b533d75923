package v1

import "errors"

var (
	ErrClosed        = errors.New("archive is closed")
	ErrCorruptRecord = errors.New("corrupt record")
	ErrDecompress    = errors.New("decompression failed")
	ErrRecordTooLong = errors.New("record exceeds maximum size")
)
