// Copyright 2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kvstore

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
)

// Values are framed on disk as
//
//	[flags: 1 byte][payload][checksum: 8 bytes]
//
// where the checksum is the big-endian xxh3 of flags and payload.

const (
	flagsSize     = 1
	checksumSize  = 8
	frameOverhead = flagsSize + checksumSize

	flagSnappy = byte(1 << 0)

	// values smaller than this are stored uncompressed
	minCompressSize = 64
)

var ErrCorruptFrame = errors.New("corrupt value frame")

func frameValue(val []byte, compress bool) []byte {
	flags := byte(0)
	payload := val
	if compress && len(val) >= minCompressSize {
		if c := snappy.Encode(nil, val); len(c) < len(val) {
			flags |= flagSnappy
			payload = c
		}
	}

	buf := make([]byte, flagsSize+len(payload)+checksumSize)
	buf[0] = flags
	copy(buf[flagsSize:], payload)
	sum := xxh3.Hash(buf[:flagsSize+len(payload)])
	binary.BigEndian.PutUint64(buf[len(buf)-checksumSize:], sum)
	return buf
}

// unframeValue checks and strips the frame of |buf|. The returned
// value never aliases |buf|.
func unframeValue(buf []byte) ([]byte, error) {
	if len(buf) < frameOverhead {
		return nil, errors.Wrapf(ErrCorruptFrame, "frame of %d bytes is too short", len(buf))
	}
	body := buf[:len(buf)-checksumSize]
	exp := binary.BigEndian.Uint64(buf[len(buf)-checksumSize:])
	if act := xxh3.Hash(body); act != exp {
		return nil, errors.Wrapf(ErrCorruptFrame, "checksum mismatch: expected %x, found %x", exp, act)
	}

	flags, payload := body[0], body[flagsSize:]
	if flags&^flagSnappy != 0 {
		return nil, errors.Wrapf(ErrCorruptFrame, "unknown frame flags %08b", flags)
	}
	if flags&flagSnappy == 0 {
		return append([]byte(nil), payload...), nil
	}
	val, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, errors.Wrap(ErrCorruptFrame, err.Error())
	}
	return val, nil
}
