// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package codec

import (
	"fmt"
	"math"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/0xsoniclabs/objstate/common"
)

// encodeModifiedUTF8 converts s into UTF-16 code units and encodes each of
// them with one to three bytes. NUL is encoded with two bytes and
// supplementary characters as two separately encoded surrogates, so no zero
// byte and no four-byte sequence is ever produced. Invalid UTF-8 is rejected
// since it could not be restored on decoding.
func encodeModifiedUTF8(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: string %q is not valid UTF-8", common.ErrInvalidArgument, s)
	}
	units := utf16.Encode([]rune(s))
	res := make([]byte, 0, len(units))
	for _, c := range units {
		switch {
		case c >= 0x01 && c <= 0x7F:
			res = append(res, byte(c))
		case c <= 0x7FF:
			res = append(res, byte(0xC0|(c>>6)), byte(0x80|(c&0x3F)))
		default:
			res = append(res, byte(0xE0|(c>>12)), byte(0x80|((c>>6)&0x3F)), byte(0x80|(c&0x3F)))
		}
	}
	if len(res) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: encoded string too long: %d bytes", common.ErrInvalidArgument, len(res))
	}
	return res, nil
}

func decodeModifiedUTF8(data []byte) (string, error) {
	units := make([]uint16, 0, len(data))
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b < 0x80:
			units = append(units, uint16(b))
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= len(data) || data[i+1]&0xC0 != 0x80 {
				return "", malformed(i)
			}
			units = append(units, uint16(b&0x1F)<<6|uint16(data[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(data) || data[i+1]&0xC0 != 0x80 || data[i+2]&0xC0 != 0x80 {
				return "", malformed(i)
			}
			units = append(units, uint16(b&0x0F)<<12|uint16(data[i+1]&0x3F)<<6|uint16(data[i+2]&0x3F))
			i += 3
		default:
			return "", malformed(i)
		}
	}
	return string(utf16.Decode(units)), nil
}

func malformed(position int) error {
	return fmt.Errorf("%w: malformed modified UTF-8 input around byte %d", common.ErrInvalidArgument, position)
}
