package codepage

import (
	"errors"
	"math"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// table is the platform source of code-page metadata and conversions.
// encode and decode treat a nil dst as a request for the output length only.
type table interface {
	info(id uint32) (Info, error)
	encode(id uint32, src []uint16, dst []byte) (int, error)
	decode(id uint32, src []byte, dst []uint16) (int, error)
}

var platform table = nativeTable{}

var errInsufficientBuffer = errors.New("insufficient buffer")

const (
	opEncode = "WideCharToMultiByte"
	opDecode = "MultiByteToWideChar"
)

// Every call into the platform table goes through the four helpers below so
// that lengths are validated in one place.

func countBytes(id uint32, src []uint16) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(src) > math.MaxInt32 {
		return 0, lib.Errorf(lib.KindCodec, opEncode, "input of %d chars exceeds the platform range", len(src))
	}
	return checkResult(opEncode)(platform.encode(id, src, nil))
}

func convertBytes(id uint32, src []uint16, dst []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(dst) == 0 {
		return 0, lib.NewError(lib.KindCodec, opEncode, errInsufficientBuffer)
	}
	if len(src) > math.MaxInt32 || len(dst) > math.MaxInt32 {
		return 0, lib.Errorf(lib.KindCodec, opEncode, "buffer exceeds the platform range")
	}
	return checkResult(opEncode)(platform.encode(id, src, dst))
}

func countChars(id uint32, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(src) > math.MaxInt32 {
		return 0, lib.Errorf(lib.KindCodec, opDecode, "input of %d bytes exceeds the platform range", len(src))
	}
	return checkResult(opDecode)(platform.decode(id, src, nil))
}

func convertChars(id uint32, src []byte, dst []uint16) (int, error) {
	if len(src) == 0 {
		return 0, nil
	}
	if len(dst) == 0 {
		return 0, lib.NewError(lib.KindCodec, opDecode, errInsufficientBuffer)
	}
	if len(src) > math.MaxInt32 || len(dst) > math.MaxInt32 {
		return 0, lib.Errorf(lib.KindCodec, opDecode, "buffer exceeds the platform range")
	}
	return checkResult(opDecode)(platform.decode(id, src, dst))
}

func checkResult(op string) func(int, error) (int, error) {
	return func(n int, err error) (int, error) {
		if err != nil {
			return 0, lib.NewError(lib.KindCodec, op, err)
		}
		if n <= 0 {
			return 0, lib.Errorf(lib.KindCodec, op, "conversion returned %d", n)
		}
		return n, nil
	}
}
