// Copyright (c) 2025-2026 PursueGen
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// WordPress stores option and meta values as PHP-serialized strings.
// This decoder handles the subset WordPress actually produces: strings,
// integers, doubles, booleans, null, and arrays. Objects are rejected.

type phpDecoder struct {
	data string
	pos  int
}

// decodePHPValue parses a PHP-serialized value into Go types: string,
// int64, float64, bool, nil, []any, or map[string]any. Plain strings
// that are not serialized (WordPress stores scalars unwrapped) are
// returned as-is.
func decodePHPValue(raw string) (any, error) {
	d := &phpDecoder{data: raw}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, fmt.Errorf("trailing data at offset %d", d.pos)
	}
	return v, nil
}

// decodeOptionValue is decodePHPValue with the WordPress convention
// applied: scalar options are stored as plain strings, so anything that
// does not parse as a serialized value is returned verbatim.
func decodeOptionValue(raw string) any {
	v, err := decodePHPValue(raw)
	if err != nil {
		return raw
	}
	return v
}

func (d *phpDecoder) value() (any, error) {
	if d.pos >= len(d.data) {
		return nil, fmt.Errorf("unexpected end of input at offset %d", d.pos)
	}

	switch d.data[d.pos] {
	case 'N':
		if err := d.expect("N;"); err != nil {
			return nil, err
		}
		return nil, nil
	case 'b':
		body, err := d.scalar('b')
		if err != nil {
			return nil, err
		}
		return body == "1", nil
	case 'i':
		body, err := d.scalar('i')
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(body, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", body, err)
		}
		return n, nil
	case 'd':
		body, err := d.scalar('d')
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid double %q: %w", body, err)
		}
		return f, nil
	case 's':
		return d.str()
	case 'a':
		return d.array()
	case 'O', 'C':
		return nil, fmt.Errorf("php objects are not supported (offset %d)", d.pos)
	default:
		return nil, fmt.Errorf("unexpected type marker %q at offset %d", d.data[d.pos], d.pos)
	}
}

// scalar consumes "<marker>:<body>;" and returns the body.
func (d *phpDecoder) scalar(marker byte) (string, error) {
	if err := d.expect(string(marker) + ":"); err != nil {
		return "", err
	}
	end := strings.IndexByte(d.data[d.pos:], ';')
	if end < 0 {
		return "", fmt.Errorf("unterminated %c value at offset %d", marker, d.pos)
	}
	body := d.data[d.pos : d.pos+end]
	d.pos += end + 1
	return body, nil
}

// str consumes s:<bytelen>:"...";. The length is a byte count, so the
// quoted content is sliced directly rather than scanned for a closing
// quote (the content may itself contain quotes).
func (d *phpDecoder) str() (string, error) {
	if err := d.expect("s:"); err != nil {
		return "", err
	}
	n, err := d.length()
	if err != nil {
		return "", err
	}
	if err := d.expect(`:"`); err != nil {
		return "", err
	}
	if d.pos+n > len(d.data) {
		return "", fmt.Errorf("string length %d exceeds input at offset %d", n, d.pos)
	}
	s := d.data[d.pos : d.pos+n]
	d.pos += n
	if err := d.expect(`";`); err != nil {
		return "", err
	}
	return s, nil
}

// array consumes a:<count>:{<key><value>...}. PHP arrays with
// sequential zero-based integer keys come back as []any, everything
// else as map[string]any (matching how json_encode treats them).
func (d *phpDecoder) array() (any, error) {
	if err := d.expect("a:"); err != nil {
		return nil, err
	}
	count, err := d.length()
	if err != nil {
		return nil, err
	}
	if err := d.expect(":{"); err != nil {
		return nil, err
	}

	m := make(map[string]any, count)
	sequential := true
	for i := 0; i < count; i++ {
		key, err := d.value()
		if err != nil {
			return nil, fmt.Errorf("array key %d: %w", i, err)
		}
		val, err := d.value()
		if err != nil {
			return nil, fmt.Errorf("array value %d: %w", i, err)
		}
		switch k := key.(type) {
		case int64:
			if k != int64(i) {
				sequential = false
			}
			m[strconv.FormatInt(k, 10)] = val
		case string:
			sequential = false
			m[k] = val
		default:
			return nil, fmt.Errorf("unsupported array key type %T", key)
		}
	}
	if err := d.expect("}"); err != nil {
		return nil, err
	}

	if sequential {
		list := make([]any, count)
		for i := 0; i < count; i++ {
			list[i] = m[strconv.Itoa(i)]
		}
		return list, nil
	}
	return m, nil
}

// length reads the decimal digits of a length or count field.
func (d *phpDecoder) length() (int, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start {
		return 0, fmt.Errorf("expected length at offset %d", start)
	}
	n, err := strconv.Atoi(d.data[start:d.pos])
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (d *phpDecoder) expect(s string) error {
	if !strings.HasPrefix(d.data[d.pos:], s) {
		return fmt.Errorf("expected %q at offset %d", s, d.pos)
	}
	d.pos += len(s)
	return nil
}

// phpToJSON decodes a PHP-serialized value and re-encodes it as JSON.
func phpToJSON(raw string) (json.RawMessage, error) {
	v, err := decodePHPValue(raw)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding decoded value: %w", err)
	}
	return b, nil
}
