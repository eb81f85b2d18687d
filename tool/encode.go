// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"math/big"
	"slices"
	"strconv"
	"strings"

	"github.com/0xsoniclabs/objstate/codec"
	"github.com/0xsoniclabs/objstate/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var (
	kindFlag = cli.StringFlag{
		Name:  "kind",
		Usage: "the wire format of the values, one of " + strings.Join(kindNames(), ", "),
		Value: "compact",
	}
	countFlag = cli.IntFlag{
		Name:  "count",
		Usage: "the number of values expected in the input",
		Value: 1,
	}
)

var EncodeCmd = cli.Command{
	Action:    withDiagnostics(doEncode),
	Name:      "encode",
	Usage:     "encodes the given values and prints the bytes in hex",
	ArgsUsage: "<value>...",
	Flags: []cli.Flag{
		&kindFlag,
	},
}

var DecodeCmd = cli.Command{
	Action:    withDiagnostics(doDecode),
	Name:      "decode",
	Usage:     "decodes values from the given hex input and prints them, one per line",
	ArgsUsage: "<hex>",
	Flags: []cli.Flag{
		&kindFlag,
		&countFlag,
	},
}

// wireKind binds a textual value representation to one of the encodings.
type wireKind struct {
	encode func(m *codec.Marshaller, value string) error
	decode func(u *codec.Unmarshaller) (string, error)
}

var wireKinds = map[string]wireKind{
	"compact": {
		encode: func(m *codec.Marshaller, value string) error {
			i, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: %v is not an integer", common.ErrInvalidArgument, value)
			}
			return m.WriteCompactInt(i)
		},
		decode: func(u *codec.Unmarshaller) (string, error) {
			i, err := u.ReadCompactInt()
			return strconv.Itoa(i), err
		},
	},
	"bigint": {
		encode: func(m *codec.Marshaller, value string) error {
			bi, ok := new(big.Int).SetString(value, 10)
			if !ok {
				return fmt.Errorf("%w: %v is not a decimal integer", common.ErrInvalidArgument, value)
			}
			return m.WriteBigInteger(bi)
		},
		decode: func(u *codec.Unmarshaller) (string, error) {
			bi, err := u.ReadBigInteger()
			if err != nil {
				return "", err
			}
			return bi.String(), nil
		},
	},
	"string": {
		encode: func(m *codec.Marshaller, value string) error {
			return m.WriteStringShared(value)
		},
		decode: func(u *codec.Unmarshaller) (string, error) {
			return u.ReadStringShared()
		},
	},
	"uint256": {
		encode: func(m *codec.Marshaller, value string) error {
			v, err := uint256.FromDecimal(value)
			if err != nil {
				return fmt.Errorf("%w: %v is not a 256-bit unsigned integer: %w", common.ErrInvalidArgument, value, err)
			}
			return codec.WriteObject(m, v)
		},
		decode: func(u *codec.Unmarshaller) (string, error) {
			v, err := codec.ReadObject[*uint256.Int](u)
			if err != nil {
				return "", err
			}
			return v.Dec(), nil
		},
	},
}

func kindNames() []string {
	names := make([]string, 0, len(wireKinds))
	for name := range wireKinds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func getWireKind(context *cli.Context) (wireKind, error) {
	name := context.String(kindFlag.Name)
	kind, found := wireKinds[name]
	if !found {
		return wireKind{}, fmt.Errorf("unknown kind %q, supported: %s", name, strings.Join(kindNames(), ", "))
	}
	return kind, nil
}

func doEncode(context *cli.Context) error {
	kind, err := getWireKind(context)
	if err != nil {
		return err
	}
	if context.Args().Len() == 0 {
		return fmt.Errorf("missing values to encode")
	}
	data, err := encodeValues(kind, context.Args().Slice())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(context.App.Writer, hexutil.Encode(data))
	return err
}

func encodeValues(kind wireKind, values []string) ([]byte, error) {
	return codec.Marshal(codec.NewDefaultRegistry(), func(m *codec.Marshaller) error {
		for _, value := range values {
			if err := kind.encode(m, value); err != nil {
				return fmt.Errorf("failed to encode %q: %w", value, err)
			}
		}
		return nil
	})
}

func doDecode(context *cli.Context) error {
	kind, err := getWireKind(context)
	if err != nil {
		return err
	}
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one hex input, got %d arguments", context.Args().Len())
	}
	data, err := hexutil.Decode(context.Args().First())
	if err != nil {
		return fmt.Errorf("invalid hex input: %w", err)
	}
	count := context.Int(countFlag.Name)
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", common.ErrInvalidArgument, count)
	}
	values, err := decodeValues(kind, data, count)
	if err != nil {
		return err
	}
	for _, value := range values {
		if _, err := fmt.Fprintln(context.App.Writer, value); err != nil {
			return err
		}
	}
	return nil
}

func decodeValues(kind wireKind, data []byte, count int) ([]string, error) {
	values := make([]string, 0, count)
	err := codec.Unmarshal(data, codec.NewDefaultRegistry(), func(u *codec.Unmarshaller) error {
		for i := 0; i < count; i++ {
			value, err := kind.decode(u)
			if err != nil {
				return fmt.Errorf("failed to decode value %d: %w", i, err)
			}
			values = append(values, value)
		}
		return nil
	})
	return values, err
}
