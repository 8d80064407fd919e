package bcs

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

var (
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	variantType     = reflect.TypeOf((*Variant)(nil)).Elem()
	uint256Type     = reflect.TypeOf(uint256.Int{})
)

// fieldOpts holds the parsed `bcs` struct tag of a field.
//
//	bcs:"-"         skip the field
//	bcs:"max=32"    reject sequences longer than 32 elements
//	bcs:"optional"  encode a pointer as Option<T>
//	bcs:"u128"      encode a uint256.Int as u128 instead of u256
type fieldOpts struct {
	skip     bool
	max      int
	optional bool
	u128     bool
}

func parseTag(tag string) (fieldOpts, error) {
	var o fieldOpts
	if tag == "" {
		return o, nil
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "-":
			o.skip = true
		case part == "optional":
			o.optional = true
		case part == "u128":
			o.u128 = true
		case strings.HasPrefix(part, "max="):
			n, err := strconv.Atoi(part[len("max="):])
			if err != nil || n < 0 {
				return o, fmt.Errorf("bad bcs tag %q", part)
			}
			o.max = n
		case part == "":
		default:
			return o, fmt.Errorf("unknown bcs tag %q", part)
		}
	}
	return o, nil
}

// Marshal returns the canonical encoding of v.
//
// Supported: bool, uint8..uint64, uint256.Int (u256, or u128 with the
// `bcs:"u128"` tag), string, []byte, [N]byte, slices, arrays, structs
// (exported fields in declaration order), pointers, interface values
// implementing Variant, and any type implementing Marshaler. Signed
// integers, platform-width uint, maps and channels are rejected.
func Marshal(v any) ([]byte, error) {
	s := NewSerializer()
	s.encode(reflect.ValueOf(v), fieldOpts{})
	if err := s.Err(); err != nil {
		return nil, err
	}
	return s.Bytes(), nil
}

// MustMarshal is Marshal for values known to be encodable. Panics on error.
func MustMarshal(v any) []byte {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func (s *Serializer) encode(rv reflect.Value, opts fieldOpts) {
	if s.err != nil {
		return
	}
	if !rv.IsValid() {
		s.SetError(fmt.Errorf("%w: nil value", ErrUnsupportedType))
		return
	}

	// Tagged unions first: the index precedes whatever the variant writes.
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			s.SetError(fmt.Errorf("%w: nil %s", ErrUnsupportedType, rv.Type()))
			return
		}
		inner := rv.Elem()
		if !inner.Type().Implements(variantType) {
			s.SetError(fmt.Errorf("%w: %s is not a Variant", ErrUnsupportedType, inner.Type()))
			return
		}
		s.Uleb128(inner.Interface().(Variant).VariantIndex())
		s.encode(inner, opts)
		return
	}

	// Option wraps the pointee whatever its type, Marshalers included.
	if rv.Kind() == reflect.Pointer && opts.optional {
		s.Bool(!rv.IsNil())
		if !rv.IsNil() {
			s.encode(rv.Elem(), fieldOpts{u128: opts.u128, max: opts.max})
		}
		return
	}

	if rv.Type().Implements(marshalerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			s.SetError(fmt.Errorf("%w: nil %s", ErrUnsupportedType, rv.Type()))
			return
		}
		s.Struct(rv.Interface().(Marshaler))
		return
	}
	if reflect.PointerTo(rv.Type()).Implements(marshalerType) {
		if rv.CanAddr() {
			s.Struct(rv.Addr().Interface().(Marshaler))
			return
		}
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		s.Struct(p.Interface().(Marshaler))
		return
	}

	if rv.Type() == uint256Type {
		x := rv.Interface().(uint256.Int)
		if opts.u128 {
			s.U128(&x)
		} else {
			s.U256(&x)
		}
		return
	}

	switch rv.Kind() {
	case reflect.Bool:
		s.Bool(rv.Bool())
	case reflect.Uint8:
		s.U8(uint8(rv.Uint()))
	case reflect.Uint16:
		s.U16(uint16(rv.Uint()))
	case reflect.Uint32:
		s.U32(uint32(rv.Uint()))
	case reflect.Uint64:
		s.U64(rv.Uint())
	case reflect.String:
		s.Str(rv.String())
	case reflect.Slice:
		if opts.max > 0 && rv.Len() > opts.max {
			s.SetError(fmt.Errorf("%w: %d elements, max %d", ErrSequenceTooLong, rv.Len(), opts.max))
			return
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			s.WriteBytes(rv.Bytes())
			return
		}
		s.SequenceLen(rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s.encode(rv.Index(i), fieldOpts{u128: opts.u128})
		}
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			s.encode(rv.Index(i), fieldOpts{u128: opts.u128})
		}
	case reflect.Struct:
		s.encodeStruct(rv)
	case reflect.Pointer:
		if rv.IsNil() {
			s.SetError(fmt.Errorf("%w: nil %s without optional tag", ErrUnsupportedType, rv.Type()))
			return
		}
		s.encode(rv.Elem(), opts)
	default:
		s.SetError(fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type()))
	}
}

func (s *Serializer) encodeStruct(rv reflect.Value) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		opts, err := parseTag(f.Tag.Get("bcs"))
		if err != nil {
			s.SetError(fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err))
			return
		}
		if opts.skip {
			continue
		}
		s.encode(rv.Field(i), opts)
		if s.err != nil {
			return
		}
	}
}

// Unmarshal decodes b into the value pointed to by v. The whole input
// must be consumed. Interface fields are not supported since the
// concrete variant type cannot be recovered from the index alone;
// such types should implement Unmarshaler.
func Unmarshal(b []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("%w: Unmarshal needs a non-nil pointer", ErrUnsupportedType)
	}
	d := NewDeserializer(b)
	d.decode(rv.Elem(), fieldOpts{})
	return d.Finish()
}

func (d *Deserializer) decode(rv reflect.Value, opts fieldOpts) {
	if d.err != nil {
		return
	}
	if rv.CanAddr() && rv.Addr().Type().Implements(unmarshalerType) {
		d.Struct(rv.Addr().Interface().(Unmarshaler))
		return
	}
	if rv.Type() == uint256Type {
		var x *uint256.Int
		if opts.u128 {
			x = d.U128()
		} else {
			x = d.U256()
		}
		rv.Set(reflect.ValueOf(*x))
		return
	}

	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(d.Bool())
	case reflect.Uint8:
		rv.SetUint(uint64(d.U8()))
	case reflect.Uint16:
		rv.SetUint(uint64(d.U16()))
	case reflect.Uint32:
		rv.SetUint(uint64(d.U32()))
	case reflect.Uint64:
		rv.SetUint(d.U64())
	case reflect.String:
		rv.SetString(d.Str())
	case reflect.Slice:
		n := d.SequenceLen()
		if d.err != nil {
			return
		}
		if opts.max > 0 && n > opts.max {
			d.SetError(fmt.Errorf("%w: %d elements, max %d", ErrSequenceTooLong, n, opts.max))
			return
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			rv.SetBytes(d.FixedBytes(n))
			return
		}
		// Bound the allocation by the input size; every element takes
		// at least one byte.
		if n > d.Remaining() {
			d.SetError(fmt.Errorf("%w: %d elements declared, %d bytes left", ErrUnexpectedEOF, n, d.Remaining()))
			return
		}
		out := reflect.MakeSlice(rv.Type(), n, n)
		for i := 0; i < n; i++ {
			d.decode(out.Index(i), fieldOpts{u128: opts.u128})
		}
		rv.Set(out)
	case reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			d.decode(rv.Index(i), fieldOpts{u128: opts.u128})
		}
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			fo, err := parseTag(f.Tag.Get("bcs"))
			if err != nil {
				d.SetError(fmt.Errorf("%s.%s: %w", t.Name(), f.Name, err))
				return
			}
			if fo.skip {
				continue
			}
			d.decode(rv.Field(i), fo)
		}
	case reflect.Pointer:
		if opts.optional && !d.Bool() {
			rv.Set(reflect.Zero(rv.Type()))
			return
		}
		elem := reflect.New(rv.Type().Elem())
		d.decode(elem.Elem(), fieldOpts{u128: opts.u128, max: opts.max})
		rv.Set(elem)
	default:
		d.SetError(fmt.Errorf("%w: %s", ErrUnsupportedType, rv.Type()))
	}
}
