package motion

import "fmt"

// Trigger identifies what caused a sample to be taken.
type Trigger int

const (
	TriggerMotion Trigger = iota // accelerometer transient interrupt
	TriggerButton                // user gesture
)

func (t Trigger) String() string {
	switch t {
	case TriggerMotion:
		return "motion"
	case TriggerButton:
		return "button"
	}
	return "unknown"
}

// Accelerometer is the sensor capability the sampler reads from.
type Accelerometer interface {
	ReadAcceleration() (x, y, z int16, err error)
}

// SensorReadError reports that no sample could be taken.
type SensorReadError struct {
	Trigger Trigger
	Err     error
}

func (e *SensorReadError) Error() string {
	return fmt.Sprintf("sensor read (%s): %v", e.Trigger, e.Err)
}

func (e *SensorReadError) Unwrap() error { return e.Err }

// Sampler reads the accelerometer and builds tagged samples.
type Sampler struct {
	sensor Accelerometer
	ids    map[Trigger]EventID
}

// NewSampler creates a sampler. Every trigger is tagged EventVibration unless
// overridden with SetEventID.
func NewSampler(sensor Accelerometer) *Sampler {
	return &Sampler{
		sensor: sensor,
		ids: map[Trigger]EventID{
			TriggerMotion: EventVibration,
			TriggerButton: EventVibration,
		},
	}
}

// SetEventID changes the id recorded for samples caused by t.
func (s *Sampler) SetEventID(t Trigger, id EventID) {
	s.ids[t] = id
}

// SampleAndEncode takes one reading. On a sensor failure it returns a
// *SensorReadError and no sample; there is no retry.
func (s *Sampler) SampleAndEncode(t Trigger) (Sample, error) {
	x, y, z, err := s.sensor.ReadAcceleration()
	if err != nil {
		return Sample{}, &SensorReadError{Trigger: t, Err: err}
	}
	id, ok := s.ids[t]
	if !ok {
		id = EventVibration
	}
	return Sample{EventID: id, X: x, Y: y, Z: z}, nil
}
