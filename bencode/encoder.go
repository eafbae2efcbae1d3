package bencode

import (
	"io"
	"strconv"
)

// Encode serialises v to its canonical Bencode form and writes it to w.
// Dict entries are always written in ascending key order (Dict maintains
// that order as an invariant, see dict.go), so encoding a Value produced
// by Decode reproduces the original bytes whenever the input was itself
// canonical; input with unsorted dict keys or zero-padded string lengths
// decodes fine but re-encodes in canonical form.
func Encode(v Value, w io.Writer) error {
	e := &encoder{w: w}
	if err := e.writeValue(v); err != nil {
		return err
	}
	return e.flush()
}

// EncodeBytes is a convenience over Encode that returns the encoded form
// as a byte slice.
func EncodeBytes(v Value) ([]byte, error) {
	var buf []byte
	e := &encoder{sink: &buf}
	if err := e.writeValue(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// encoder buffers small writes before handing them to an io.Writer, or
// appends directly to an in-memory sink when EncodeBytes is used (avoiding
// a double copy through io.Writer for the common in-memory case).
type encoder struct {
	w    io.Writer
	sink *[]byte
	buf  []byte
}

func (e *encoder) writeByte(b byte) error {
	if e.sink != nil {
		*e.sink = append(*e.sink, b)
		return nil
	}
	e.buf = append(e.buf, b)
	return nil
}

func (e *encoder) writeBytes(b []byte) error {
	if e.sink != nil {
		*e.sink = append(*e.sink, b...)
		return nil
	}
	e.buf = append(e.buf, b...)
	return nil
}

func (e *encoder) writeString(s string) error {
	if e.sink != nil {
		*e.sink = append(*e.sink, s...)
		return nil
	}
	e.buf = append(e.buf, s...)
	return nil
}

func (e *encoder) flush() error {
	if e.sink != nil || len(e.buf) == 0 {
		return nil
	}
	_, err := e.w.Write(e.buf)
	e.buf = e.buf[:0]
	return err
}

func (e *encoder) writeValue(v Value) error {
	switch v.kind {
	case KindInt:
		return e.writeInt(v.i)
	case KindString:
		return e.writeBString(v.s)
	case KindList:
		return e.writeList(v.l)
	case KindDict:
		return e.writeDict(v.d)
	default:
		return newWrongKindError("cannot encode value of unknown kind %d", v.kind)
	}
}

func (e *encoder) writeInt(n int64) error {
	if err := e.writeByte('i'); err != nil {
		return err
	}
	if err := e.writeString(strconv.FormatInt(n, 10)); err != nil {
		return err
	}
	return e.writeByte('e')
}

func (e *encoder) writeBString(b []byte) error {
	if err := e.writeString(strconv.Itoa(len(b))); err != nil {
		return err
	}
	if err := e.writeByte(':'); err != nil {
		return err
	}
	return e.writeBytes(b)
}

func (e *encoder) writeList(l *List) error {
	if err := e.writeByte('l'); err != nil {
		return err
	}
	var err error
	l.Each(func(_ int, v Value) {
		if err != nil {
			return
		}
		err = e.writeValue(v)
	})
	if err != nil {
		return err
	}
	return e.writeByte('e')
}

func (e *encoder) writeDict(d *Dict) error {
	if err := e.writeByte('d'); err != nil {
		return err
	}
	var err error
	// Dict.Each always walks entries in ascending key order; this is what
	// makes encode(decode(bytes)) reproduce canonical input byte-for-byte.
	d.Each(func(key []byte, v Value) {
		if err != nil {
			return
		}
		if err = e.writeBString(key); err != nil {
			return
		}
		err = e.writeValue(v)
	})
	if err != nil {
		return err
	}
	return e.writeByte('e')
}
