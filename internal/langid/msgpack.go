package langid

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/textstat/internal/freq"
)

// msgpackPair is one key/value of a decoded map, kept in stream order.
type msgpackPair struct {
	key   interface{}
	value interface{}
}

// decodeMsgpackFingerprint reads a single msgpack map of trigram to count.
func decodeMsgpackFingerprint(r io.Reader) (freq.Map[string], error) {
	dec := msgpackDecoder{r: bufio.NewReader(r)}
	root, err := dec.decodeValue()
	if err != nil {
		return nil, fmt.Errorf("failed to decode msgpack: %w", err)
	}
	pairs, ok := root.([]msgpackPair)
	if !ok {
		return nil, fmt.Errorf("unsupported msgpack root type %T", root)
	}
	entries := make([]freq.Entry[string], 0, len(pairs))
	for _, p := range pairs {
		key, ok := p.key.(string)
		if !ok {
			return nil, fmt.Errorf("unsupported trigram key %T", p.key)
		}
		count, ok := toCount(p.value)
		if !ok {
			return nil, fmt.Errorf("invalid count for %q", key)
		}
		entries = append(entries, freq.Entry[string]{Key: key, Count: count})
	}
	return freq.FromEntries(entries), nil
}

func toCount(v interface{}) (int, bool) {
	switch num := v.(type) {
	case int64:
		return int(num), num >= 0 && num <= math.MaxInt32
	case uint64:
		return int(num), num <= math.MaxInt32
	case float64:
		if !validCount(num) {
			return 0, false
		}
		return int(num), true
	default:
		return 0, false
	}
}

type msgpackDecoder struct {
	r *bufio.Reader
}

func (d *msgpackDecoder) decodeValue() (interface{}, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch {
	case b <= 0x7f:
		return int64(b), nil
	case b >= 0xe0:
		return int64(int8(b)), nil
	case b >= 0xa0 && b <= 0xbf:
		return d.readString(int(b & 0x1f))
	case b >= 0x90 && b <= 0x9f:
		return d.readArray(int(b & 0x0f))
	case b >= 0x80 && b <= 0x8f:
		return d.readMap(int(b & 0x0f))
	}

	switch b {
	case 0xc0:
		return nil, nil
	case 0xc2:
		return false, nil
	case 0xc3:
		return true, nil
	case 0xca:
		val, err := d.readUint(4)
		if err != nil {
			return nil, err
		}
		return float64(math.Float32frombits(uint32(val))), nil
	case 0xcb:
		val, err := d.readUint(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(val), nil
	case 0xcc, 0xcd, 0xce:
		val, err := d.readUint(1 << (b - 0xcc))
		if err != nil {
			return nil, err
		}
		return int64(val), nil
	case 0xcf:
		return d.readUint(8)
	case 0xd0:
		val, err := d.readUint(1)
		return int64(int8(val)), err
	case 0xd1:
		val, err := d.readUint(2)
		return int64(int16(val)), err
	case 0xd2:
		val, err := d.readUint(4)
		return int64(int32(val)), err
	case 0xd3:
		val, err := d.readUint(8)
		return int64(val), err
	case 0xd9, 0xda, 0xdb:
		length, err := d.readUint(1 << (b - 0xd9))
		if err != nil {
			return nil, err
		}
		return d.readString(int(length))
	case 0xdc, 0xdd:
		length, err := d.readUint(2 << (b - 0xdc))
		if err != nil {
			return nil, err
		}
		return d.readArray(int(length))
	case 0xde, 0xdf:
		length, err := d.readUint(2 << (b - 0xde))
		if err != nil {
			return nil, err
		}
		return d.readMap(int(length))
	default:
		return nil, fmt.Errorf("unsupported msgpack prefix 0x%x", b)
	}
}

func (d *msgpackDecoder) readArray(length int) ([]interface{}, error) {
	out := make([]interface{}, 0, min(length, 1024))
	for i := 0; i < length; i++ {
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (d *msgpackDecoder) readMap(length int) ([]msgpackPair, error) {
	out := make([]msgpackPair, 0, min(length, 1024))
	for i := 0; i < length; i++ {
		key, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		val, err := d.decodeValue()
		if err != nil {
			return nil, err
		}
		out = append(out, msgpackPair{key: key, value: val})
	}
	return out, nil
}

func (d *msgpackDecoder) readString(length int) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("invalid length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readUint reads a big-endian unsigned integer of n bytes (1, 2, 4 or 8).
func (d *msgpackDecoder) readUint(n int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[8-n:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
