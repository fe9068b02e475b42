package protocol

import (
	"strings"
	"unicode/utf16"

	"github.com/roadrunner-server/errors"
)

// DecodeBody turns a frame's raw body bytes into text using the encoding
// named by its Content-Type charset. Only the two encodings DAP adapters
// are known to use in practice are supported: UTF-8 (the default, and the
// only encoding most adapters ever emit) and UTF-16, in either byte order.
// Pulling in a general transcoding framework for the long tail of charsets
// nobody's adapter actually sends would be dead weight.
func DecodeBody(data []byte, encoding string) (string, error) {
	const op = errors.Op("protocol.DecodeBody")

	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return string(data), nil
	case "utf-16le", "utf16le":
		return decodeUTF16(data, false), nil
	case "utf-16be", "utf16be", "utf-16", "utf16":
		return decodeUTF16(data, true), nil
	default:
		return "", errors.E(op, errors.Str("unsupported encoding: "+encoding))
	}
}

func decodeUTF16(data []byte, bigEndian bool) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		} else {
			units[i] = uint16(data[2*i+1])<<8 | uint16(data[2*i])
		}
	}
	return string(utf16.Decode(units))
}
