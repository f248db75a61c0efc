package rlp

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
)

var (
	// ErrExpectedString is returned when a list was found where a byte
	// string was expected, or vice versa.
	ErrExpectedString = errors.New("rlp: expected string or byte")
	// ErrExpectedList is returned when a string was found where a list was
	// expected.
	ErrExpectedList = errors.New("rlp: expected list")
	// ErrCanonSize is returned when a non-canonical (e.g. zero-padded)
	// length prefix is encountered.
	ErrCanonSize = errors.New("rlp: non-canonical size information")
	errExtraData = errors.New("rlp: input contains extra data after value")
)

// DecodeBytes parses RLP-encoded data into val, which must be a non-nil
// pointer.
func DecodeBytes(data []byte, val interface{}) error {
	rv := reflect.ValueOf(val)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return errors.New("rlp: Decode requires a non-nil pointer")
	}
	rest, err := decodeValue(data, rv.Elem())
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return errExtraData
	}
	return nil
}

// kind describes the shape of one RLP item.
type kind int

const (
	kindString kind = iota
	kindList
)

// splitHeader parses the RLP header at the start of data and returns the
// item kind, the payload bytes, and any trailing bytes.
func splitHeader(data []byte) (k kind, content, rest []byte, err error) {
	if len(data) == 0 {
		return 0, nil, nil, errors.New("rlp: input too short")
	}
	b0 := data[0]
	switch {
	case b0 < 0x80:
		return kindString, data[0:1], data[1:], nil
	case b0 < 0xb8:
		size := int(b0 - 0x80)
		if len(data) < 1+size {
			return 0, nil, nil, errors.New("rlp: input too short")
		}
		if size == 1 && data[1] < 0x80 {
			return 0, nil, nil, ErrCanonSize
		}
		return kindString, data[1 : 1+size], data[1+size:], nil
	case b0 < 0xc0:
		n := int(b0 - 0xb7)
		size, tail, err := readSize(data[1:], n)
		if err != nil {
			return 0, nil, nil, err
		}
		if len(tail) < size {
			return 0, nil, nil, errors.New("rlp: input too short")
		}
		return kindString, tail[:size], tail[size:], nil
	case b0 < 0xf8:
		size := int(b0 - 0xc0)
		if len(data) < 1+size {
			return 0, nil, nil, errors.New("rlp: input too short")
		}
		return kindList, data[1 : 1+size], data[1+size:], nil
	default:
		n := int(b0 - 0xf7)
		size, tail, err := readSize(data[1:], n)
		if err != nil {
			return 0, nil, nil, err
		}
		if len(tail) < size {
			return 0, nil, nil, errors.New("rlp: input too short")
		}
		return kindList, tail[:size], tail[size:], nil
	}
}

func readSize(data []byte, n int) (size int, rest []byte, err error) {
	if len(data) < n {
		return 0, nil, errors.New("rlp: input too short")
	}
	if data[0] == 0 {
		return 0, nil, ErrCanonSize
	}
	var s uint64
	for _, b := range data[:n] {
		s = s<<8 | uint64(b)
	}
	return int(s), data[n:], nil
}

// splitList returns the items of a top-level list, consuming exactly one
// RLP item from data and returning the trailing bytes.
func splitList(data []byte) (items [][]byte, rest []byte, err error) {
	k, content, rest, err := splitHeader(data)
	if err != nil {
		return nil, nil, err
	}
	if k != kindList {
		return nil, nil, ErrExpectedList
	}
	for len(content) > 0 {
		_, _, tail, err := splitHeader(content)
		if err != nil {
			return nil, nil, err
		}
		itemLen := len(content) - len(tail)
		items = append(items, content[:itemLen])
		content = tail
	}
	return items, rest, nil
}

func decodeValue(data []byte, v reflect.Value) (rest []byte, err error) {
	t := v.Type()
	switch {
	case t.Kind() == reflect.Ptr:
		if isBigIntType(t) {
			return decodeBigIntPtr(data, v)
		}
		elem := reflect.New(t.Elem())
		rest, err = decodeValue(data, elem.Elem())
		if err != nil {
			return rest, err
		}
		v.Set(elem)
		return rest, nil
	case isBigIntType(reflect.PtrTo(t)) && t.Kind() == reflect.Struct:
		return decodeBigIntPtr(data, v.Addr())
	case t.Kind() == reflect.String:
		k, content, tail, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		if k != kindString {
			return nil, ErrExpectedString
		}
		v.SetString(string(content))
		return tail, nil
	case t.Kind() == reflect.Bool:
		k, content, tail, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		if k != kindString {
			return nil, ErrExpectedString
		}
		v.SetBool(len(content) == 1 && content[0] == 1)
		return tail, nil
	case t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uint64:
		k, content, tail, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		if k != kindString {
			return nil, ErrExpectedString
		}
		var u uint64
		for _, b := range content {
			u = u<<8 | uint64(b)
		}
		v.SetUint(u)
		return tail, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		k, content, tail, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		if k != kindString {
			return nil, ErrExpectedString
		}
		cp := make([]byte, len(content))
		copy(cp, content)
		v.SetBytes(cp)
		return tail, nil
	case t.Kind() == reflect.Array && t.Elem().Kind() == reflect.Uint8:
		k, content, tail, err := splitHeader(data)
		if err != nil {
			return nil, err
		}
		if k != kindString {
			return nil, ErrExpectedString
		}
		reflect.Copy(v, reflect.ValueOf(content))
		return tail, nil
	case t.Kind() == reflect.Slice:
		items, tail, err := splitList(data)
		if err != nil {
			return nil, err
		}
		sl := reflect.MakeSlice(t, len(items), len(items))
		for i, item := range items {
			if _, err := decodeValue(item, sl.Index(i)); err != nil {
				return nil, err
			}
		}
		v.Set(sl)
		return tail, nil
	case t.Kind() == reflect.Struct:
		items, tail, err := splitList(data)
		if err != nil {
			return nil, err
		}
		fi := 0
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue
			}
			if fi >= len(items) {
				return nil, fmt.Errorf("rlp: too few list elements for %s", t.Name())
			}
			if _, err := decodeValue(items[fi], v.Field(i)); err != nil {
				return nil, err
			}
			fi++
		}
		return tail, nil
	default:
		return nil, fmt.Errorf("rlp: unsupported kind %s", t.Kind())
	}
}

func decodeBigIntPtr(data []byte, v reflect.Value) (rest []byte, err error) {
	k, content, tail, err := splitHeader(data)
	if err != nil {
		return nil, err
	}
	if k != kindString {
		return nil, ErrExpectedString
	}
	bi := new(big.Int).SetBytes(content)
	v.Set(reflect.ValueOf(bi))
	return tail, nil
}

// SplitList is an exported variant of splitList, used by the trie package
// to decode variable-shape nodes (e.g. the 17-element branch node) without
// going through reflection.
func SplitList(data []byte) (items [][]byte, rest []byte, err error) {
	return splitList(data)
}

// SplitString returns the decoded byte-string payload of a single RLP
// string item, plus any trailing bytes.
func SplitString(data []byte) (content, rest []byte, err error) {
	k, content, rest, err := splitHeader(data)
	if err != nil {
		return nil, nil, err
	}
	if k != kindString {
		return nil, nil, ErrExpectedString
	}
	return content, rest, nil
}
