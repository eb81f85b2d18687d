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
	"bytes"
	"errors"
	"fmt"

	"github.com/0xsoniclabs/objstate/common"
)

// Marshal runs encode on a fresh context and returns the produced bytes. The
// context is closed on all paths.
func Marshal(registry *Registry, encode func(*Marshaller) error) ([]byte, error) {
	var buffer bytes.Buffer
	m := NewMarshaller(&buffer, registry)
	if err := encode(m); err != nil {
		return nil, errors.Join(err, m.Close())
	}
	if err := m.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Unmarshal runs decode on a fresh context reading data. Bytes left over after
// decode are reported as ErrInvalidArgument.
func Unmarshal(data []byte, registry *Registry, decode func(*Unmarshaller) error) error {
	reader := bytes.NewReader(data)
	u := NewUnmarshaller(reader, registry)
	defer u.Close()
	if err := decode(u); err != nil {
		return err
	}
	if remaining := reader.Len(); remaining > 0 {
		return fmt.Errorf("%w: %d trailing bytes after decoding", common.ErrInvalidArgument, remaining)
	}
	return nil
}
