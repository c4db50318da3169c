// Package accel provides three-axis accelerometer reads with hardware abstraction.
// The real implementation drives an MPU9250 over SPI through periph.
// The fake implementation allows testing without hardware.
package accel

// Reader reads raw acceleration in sensor counts.
type Reader interface {
	// ReadAcceleration returns one X/Y/Z reading.
	ReadAcceleration() (x, y, z int16, err error)

	// Close releases sensor resources.
	Close() error
}

// Sample is a single three-axis reading.
type Sample struct {
	X, Y, Z int16
}

// Transient configures the sensor's motion interrupt.
// Threshold is in sensor LSBs (≈3.9 mg at ±2 g), Count in consecutive samples.
type Transient struct {
	Threshold uint8
	Count     uint8
}

// DefaultTransient matches the vibration firmware's ±2 g transient mode.
var DefaultTransient = Transient{Threshold: 0x10, Count: 2}
