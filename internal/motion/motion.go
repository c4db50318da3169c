// Package motion turns an accelerometer reading into the fixed 7-byte record
// handed to the transport.
//
// Record layout (offsets in bytes):
//
//	0      bits 0-3: event id (signed 4-bit), bits 4-7: reserved
//	1..2   X acceleration, big-endian int16
//	3..4   Y acceleration, big-endian int16
//	5..6   Z acceleration, big-endian int16
package motion

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the encoded length of a Sample.
const RecordSize = 7

const (
	offsetHeader = 0
	offsetX      = 1
	offsetY      = 3
	offsetZ      = 5
)

// EventID tags a record. Only the low 4 bits are encoded, as a signed nibble.
type EventID int8

// EventVibration is the id the device has always sent for acceleration reports.
const EventVibration EventID = 1

// Record is an encoded Sample.
type Record [RecordSize]byte

// Sample is one acceleration report. X, Y and Z are the sensor's values; the
// byte swap for the wire happens in Encode.
type Sample struct {
	EventID  EventID
	Reserved uint8
	X, Y, Z  int16
}

// Swap16 reverses the two bytes of v's bit pattern.
func Swap16(v int16) int16 {
	u := uint16(v)
	return int16(u>>8 | u<<8)
}

// Encode packs the sample. Each axis is byte-swapped and stored in the device's
// little-endian struct layout, which puts it on the wire big-endian.
func (s Sample) Encode() Record {
	var r Record
	r[offsetHeader] = byte(s.EventID)&0x0F | (s.Reserved&0x0F)<<4
	binary.LittleEndian.PutUint16(r[offsetX:], uint16(Swap16(s.X)))
	binary.LittleEndian.PutUint16(r[offsetY:], uint16(Swap16(s.Y)))
	binary.LittleEndian.PutUint16(r[offsetZ:], uint16(Swap16(s.Z)))
	return r
}

// Bytes returns the record as a payload slice.
func (r Record) Bytes() []byte {
	b := make([]byte, RecordSize)
	copy(b, r[:])
	return b
}

// Decode parses a payload produced by Encode.
func Decode(b []byte) (Sample, error) {
	if len(b) != RecordSize {
		return Sample{}, fmt.Errorf("decode record: got %d bytes, want %d", len(b), RecordSize)
	}
	// Sign-extend the low nibble.
	id := EventID(int8(b[offsetHeader]<<4) >> 4)
	return Sample{
		EventID:  id,
		Reserved: b[offsetHeader] >> 4,
		X:        int16(binary.BigEndian.Uint16(b[offsetX:])),
		Y:        int16(binary.BigEndian.Uint16(b[offsetY:])),
		Z:        int16(binary.BigEndian.Uint16(b[offsetZ:])),
	}, nil
}
