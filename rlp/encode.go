package rlp

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
)

// EncodeToBytes returns the RLP encoding of val.
func EncodeToBytes(val interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, val); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the RLP encoding of val to w.
func Encode(w *bytes.Buffer, val interface{}) error {
	return encodeValue(w, reflect.ValueOf(val))
}

// Raw is a piece of already RLP-encoded data. Encoding a Raw value copies
// its bytes to the output verbatim instead of wrapping them as a string;
// used by the trie package to splice pre-encoded child nodes into a
// parent's list body.
type Raw []byte

var rawType = reflect.TypeOf(Raw(nil))

func encodeValue(w *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		return encodeString(w, nil)
	}
	if v.Type() == rawType {
		w.Write(v.Bytes())
		return nil
	}
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			if isBigIntType(v.Type()) {
				return encodeString(w, nil)
			}
			return encodeValue(w, reflect.Zero(v.Type().Elem()))
		}
		return encodeValue(w, v.Elem())
	case reflect.Interface:
		return encodeValue(w, v.Elem())
	case reflect.String:
		return encodeString(w, []byte(v.String()))
	case reflect.Bool:
		if v.Bool() {
			return encodeString(w, []byte{1})
		}
		return encodeString(w, nil)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(w, v.Uint())
	case reflect.Slice, reflect.Array:
		if isByteSlice(v.Type()) {
			return encodeString(w, byteSliceOf(v))
		}
		return encodeList(w, v)
	case reflect.Struct:
		if isBigIntType(reflect.PtrTo(v.Type())) {
			return encodeBigInt(w, v.Addr().Interface().(*big.Int))
		}
		return encodeStruct(w, v)
	default:
		if isBigIntType(v.Type()) {
			bi := v.Interface().(*big.Int)
			return encodeBigInt(w, bi)
		}
		return fmt.Errorf("rlp: unsupported kind %s", v.Kind())
	}
}

func isBigIntType(t reflect.Type) bool {
	return t == reflect.TypeOf((*big.Int)(nil))
}

func isByteSlice(t reflect.Type) bool {
	return (t.Kind() == reflect.Slice || t.Kind() == reflect.Array) && t.Elem().Kind() == reflect.Uint8
}

func byteSliceOf(v reflect.Value) []byte {
	if v.Kind() == reflect.Array {
		b := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(b), v)
		return b
	}
	return v.Bytes()
}

func encodeBigInt(w *bytes.Buffer, bi *big.Int) error {
	if bi == nil {
		return encodeString(w, nil)
	}
	if bi.Sign() < 0 {
		return fmt.Errorf("rlp: cannot encode negative big.Int")
	}
	if bi.Sign() == 0 {
		return encodeString(w, nil)
	}
	return encodeString(w, bi.Bytes())
}

func encodeUint(w *bytes.Buffer, i uint64) error {
	if i == 0 {
		return encodeString(w, nil)
	}
	return encodeString(w, big.NewInt(0).SetUint64(i).Bytes())
}

// encodeString writes the RLP encoding of a byte string.
func encodeString(w *bytes.Buffer, b []byte) error {
	switch {
	case len(b) == 1 && b[0] < 0x80:
		w.WriteByte(b[0])
	case len(b) < 56:
		w.WriteByte(byte(0x80 + len(b)))
		w.Write(b)
	default:
		writeLength(w, 0xb7, len(b))
		w.Write(b)
	}
	return nil
}

func encodeList(w *bytes.Buffer, v reflect.Value) error {
	var body bytes.Buffer
	for i := 0; i < v.Len(); i++ {
		if err := encodeValue(&body, v.Index(i)); err != nil {
			return err
		}
	}
	return writeListHeaderAndBody(w, body.Bytes())
}

func encodeStruct(w *bytes.Buffer, v reflect.Value) error {
	var body bytes.Buffer
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		if err := encodeValue(&body, v.Field(i)); err != nil {
			return err
		}
	}
	return writeListHeaderAndBody(w, body.Bytes())
}

func writeListHeaderAndBody(w *bytes.Buffer, body []byte) error {
	if len(body) < 56 {
		w.WriteByte(byte(0xc0 + len(body)))
	} else {
		writeLength(w, 0xf7, len(body))
	}
	w.Write(body)
	return nil
}

func writeLength(w *bytes.Buffer, offset byte, length int) {
	lenBytes := big.NewInt(int64(length)).Bytes()
	w.WriteByte(offset + byte(len(lenBytes)))
	w.Write(lenBytes)
}

// AppendUint64 appends the RLP encoding of i to buf and returns the result,
// mirroring go-ethereum's low-level helper used by derived-SHA tries.
func AppendUint64(buf []byte, i uint64) []byte {
	var b bytes.Buffer
	_ = encodeUint(&b, i)
	return append(buf, b.Bytes()...)
}
