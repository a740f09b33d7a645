package typedarray

import (
	"encoding/binary"
	"math"

	"github.com/go-ecma/engine/jserror"
)

// DataView provides explicit endian-selectable access over an
// ArrayBuffer (spec.md §4.3: "DataView provides explicit endian selection").
type DataView struct {
	buffer     *ArrayBuffer
	byteOffset int
	byteLength int // -1 if length-tracking
}

// NewDataView constructs a DataView; byteLength<0 requests a
// length-tracking view.
func NewDataView(buf *ArrayBuffer, byteOffset, byteLength int) (*DataView, error) {
	if byteOffset < 0 || byteOffset > buf.ByteLength() {
		return nil, jserror.New(jserror.RangeError, "DataView offset out of bounds")
	}
	if byteLength >= 0 && byteOffset+byteLength > buf.ByteLength() {
		return nil, jserror.New(jserror.RangeError, "DataView length out of bounds")
	}
	return &DataView{buffer: buf, byteOffset: byteOffset, byteLength: byteLength}, nil
}

func (d *DataView) Buffer() *ArrayBuffer { return d.buffer }

func (d *DataView) ByteLength() int {
	if d.byteLength >= 0 {
		return d.byteLength
	}
	n := d.buffer.ByteLength() - d.byteOffset
	if n < 0 {
		return 0
	}
	return n
}

func (d *DataView) checkRange(offset, size int) ([]byte, error) {
	if d.buffer.Detached() {
		return nil, jserror.New(jserror.TypeError, "cannot read a detached ArrayBuffer")
	}
	if offset < 0 || offset+size > d.ByteLength() {
		return nil, jserror.New(jserror.RangeError, "offset is outside the bounds of the DataView")
	}
	start := d.byteOffset + offset
	return d.buffer.Bytes()[start : start+size], nil
}

func endian(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (d *DataView) GetUint8(offset int) (uint8, error) {
	b, err := d.checkRange(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *DataView) SetUint8(offset int, v uint8) error {
	b, err := d.checkRange(offset, 1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (d *DataView) GetUint16(offset int, littleEndian bool) (uint16, error) {
	b, err := d.checkRange(offset, 2)
	if err != nil {
		return 0, err
	}
	return endian(littleEndian).Uint16(b), nil
}

func (d *DataView) SetUint16(offset int, v uint16, littleEndian bool) error {
	b, err := d.checkRange(offset, 2)
	if err != nil {
		return err
	}
	endian(littleEndian).PutUint16(b, v)
	return nil
}

func (d *DataView) GetUint32(offset int, littleEndian bool) (uint32, error) {
	b, err := d.checkRange(offset, 4)
	if err != nil {
		return 0, err
	}
	return endian(littleEndian).Uint32(b), nil
}

func (d *DataView) SetUint32(offset int, v uint32, littleEndian bool) error {
	b, err := d.checkRange(offset, 4)
	if err != nil {
		return err
	}
	endian(littleEndian).PutUint32(b, v)
	return nil
}

func (d *DataView) GetFloat64(offset int, littleEndian bool) (float64, error) {
	b, err := d.checkRange(offset, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(endian(littleEndian).Uint64(b)), nil
}

func (d *DataView) SetFloat64(offset int, v float64, littleEndian bool) error {
	b, err := d.checkRange(offset, 8)
	if err != nil {
		return err
	}
	endian(littleEndian).PutUint64(b, math.Float64bits(v))
	return nil
}

func (d *DataView) GetFloat32(offset int, littleEndian bool) (float32, error) {
	b, err := d.checkRange(offset, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(endian(littleEndian).Uint32(b)), nil
}

func (d *DataView) SetFloat32(offset int, v float32, littleEndian bool) error {
	b, err := d.checkRange(offset, 4)
	if err != nil {
		return err
	}
	endian(littleEndian).PutUint32(b, math.Float32bits(v))
	return nil
}
