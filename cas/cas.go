// Package cas is a content-addressed store for compiled programs.
// Items are stored by the hash of their encoded bytes; the suite
// runner compiles each program once, puts it here, and retrieves it
// per check.
package cas

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// Encodable is anything that can round-trip through the store.
type Encodable interface {
	Encode(w io.Writer) error
	Decode(r io.Reader) error
}

type Hash uint64

type Store interface {
	Put(item Encodable) (Hash, error)
	Has(hash Hash) bool
	getValue(hash Hash) (bool, []byte, error)
}

// Retrieve decodes the stored item for hash into a fresh T. T must be
// a pointer type implementing Encodable.
func Retrieve[T Encodable](s Store, hash Hash) (T, error) {
	var t T
	has, data, err := s.getValue(hash)
	if err != nil {
		return t, err
	}
	if !has {
		return t, fmt.Errorf("hash not found in store: %d", hash)
	}

	typ := reflect.TypeOf(t)
	if typ.Kind() != reflect.Ptr {
		return t, fmt.Errorf("Retrieve requires a pointer type, got %s", typ)
	}
	instance := reflect.New(typ.Elem()).Interface().(T)
	if err := instance.Decode(bytes.NewReader(data)); err != nil {
		return t, fmt.Errorf("decoding stored item: %w", err)
	}
	return instance, nil
}
