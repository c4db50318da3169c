package accel

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

// RealReader reads acceleration from an MPU9250 on an SPI bus.
type RealReader struct {
	dev *mpu9250.MPU9250
}

// NewRealReader opens the MPU9250 on spiDev with chip select csPin (periph pin
// name, e.g. "GPIO8"). The transient settings are logged for the record; the
// motion interrupt itself is programmed by the sensor driver.
func NewRealReader(spiDev, csPin string, tr Transient) (*RealReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("chip select pin %q not found", csPin)
	}

	t, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("spi transport (%s): %w", spiDev, err)
	}

	dev, err := mpu9250.New(t)
	if err != nil {
		return nil, fmt.Errorf("create mpu9250: %w", err)
	}
	if err := dev.Init(); err != nil {
		return nil, fmt.Errorf("init mpu9250: %w", err)
	}

	log.Printf("accel: mpu9250 ready on %s (cs=%s) transient threshold=0x%02X count=%d",
		spiDev, csPin, tr.Threshold, tr.Count)
	return &RealReader{dev: dev}, nil
}

// ReadAcceleration returns the raw X/Y/Z accelerometer counts.
func (r *RealReader) ReadAcceleration() (int16, int16, int16, error) {
	x, err := r.dev.GetAccelerationX()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("read accel X: %w", err)
	}
	y, err := r.dev.GetAccelerationY()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("read accel Y: %w", err)
	}
	z, err := r.dev.GetAccelerationZ()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("read accel Z: %w", err)
	}
	return x, y, z, nil
}

// Close releases the sensor. The SPI port is owned by periph's registry and is
// released at process exit.
func (r *RealReader) Close() error {
	return nil
}
