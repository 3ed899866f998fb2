// Package abi implements the packed (non-padded) encoding that Solidity's
// abi.encodePacked produces for the value types used by attestation claims.
package abi

import (
	"errors"
	"fmt"
	"strings"

	"revix/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

type Type uint8

const (
	Address Type = iota + 1
	String
	Uint32
	Bytes32
	Uint256
)

func (t Type) String() string {
	switch t {
	case Address:
		return "address"
	case String:
		return "string"
	case Uint32:
		return "uint32"
	case Bytes32:
		return "bytes32"
	case Uint256:
		return "uint256"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Dynamic reports whether the packed form has no fixed width.
func (t Type) Dynamic() bool {
	return t == String
}

// Width is the packed width in bytes, or 0 for dynamic types.
func (t Type) Width() int {
	switch t {
	case Address:
		return common.AddressLength
	case Uint32:
		return 4
	case Bytes32, Uint256:
		return 32
	default:
		return 0
	}
}

type Field struct {
	Name string
	Type Type
}

// Layout is the ordered field list of one packed tuple. Field order is part
// of the on-chain protocol.
type Layout struct {
	name   string
	fields []Field
}

var ErrAdjacentDynamic = errors.New("adjacent dynamic fields")

// NewLayout rejects layouts where two dynamic fields touch: their concatenation
// has no boundary and distinct tuples can pack to the same bytes.
func NewLayout(name string, fields ...Field) (Layout, error) {
	if err := checkFields(fields); err != nil {
		return Layout{}, err
	}
	for i := 1; i < len(fields); i++ {
		if fields[i-1].Type.Dynamic() && fields[i].Type.Dynamic() {
			return Layout{}, fmt.Errorf("%w: %s and %s in %s", ErrAdjacentDynamic, fields[i-1].Name, fields[i].Name, name)
		}
	}
	return Layout{name: name, fields: append([]Field(nil), fields...)}, nil
}

// NewVerifierLayout builds a layout that must match an already deployed
// verifier ABI, so adjacent dynamic fields are accepted as given.
func NewVerifierLayout(name string, fields ...Field) (Layout, error) {
	if err := checkFields(fields); err != nil {
		return Layout{}, err
	}
	return Layout{name: name, fields: append([]Field(nil), fields...)}, nil
}

func checkFields(fields []Field) error {
	if len(fields) == 0 {
		return errors.New("layout has no fields")
	}
	for _, f := range fields {
		if f.Type < Address || f.Type > Uint256 {
			return fmt.Errorf("field %s: unknown type", f.Name)
		}
	}
	return nil
}

func (l Layout) Name() string { return l.name }

func (l Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Signature renders the Solidity type list, e.g. "address,string,uint32".
func (l Layout) Signature() string {
	parts := make([]string, len(l.fields))
	for i, f := range l.fields {
		parts[i] = f.Type.String()
	}
	return strings.Join(parts, ",")
}

// Pack encodes values in layout order. Every value must have the Go type of
// its slot: common.Address, string, uint32, common.Hash or *uint256.Int.
func (l Layout) Pack(values ...any) ([]byte, error) {
	if len(values) != len(l.fields) {
		return nil, fmt.Errorf("%w: %s expects %d values, got %d", domain.ErrEncoding, l.name, len(l.fields), len(values))
	}
	size := 0
	for i, f := range l.fields {
		if f.Type.Dynamic() {
			if s, ok := values[i].(string); ok {
				size += len(s)
			}
			continue
		}
		size += f.Type.Width()
	}
	out := make([]byte, 0, size)
	for i, f := range l.fields {
		var err error
		out, err = appendValue(out, f, values[i])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendValue(out []byte, f Field, value any) ([]byte, error) {
	switch f.Type {
	case Address:
		v, ok := value.(common.Address)
		if !ok {
			return nil, typeError(f, value)
		}
		return append(out, v.Bytes()...), nil
	case String:
		v, ok := value.(string)
		if !ok {
			return nil, typeError(f, value)
		}
		if v == "" {
			return nil, fmt.Errorf("%w: field %s is empty", domain.ErrEncoding, f.Name)
		}
		return append(out, v...), nil
	case Uint32:
		v, ok := value.(uint32)
		if !ok {
			return nil, typeError(f, value)
		}
		return append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)), nil
	case Bytes32:
		v, ok := value.(common.Hash)
		if !ok {
			return nil, typeError(f, value)
		}
		return append(out, v.Bytes()...), nil
	case Uint256:
		v, ok := value.(*uint256.Int)
		if !ok || v == nil {
			return nil, typeError(f, value)
		}
		word := v.Bytes32()
		return append(out, word[:]...), nil
	default:
		return nil, fmt.Errorf("%w: field %s has unknown type", domain.ErrEncoding, f.Name)
	}
}

func typeError(f Field, value any) error {
	return fmt.Errorf("%w: field %s wants %s, got %T", domain.ErrEncoding, f.Name, f.Type, value)
}
