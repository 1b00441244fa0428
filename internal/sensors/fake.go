package sensors

import "errors"

var errNoSamples = errors.New("no samples configured")

// FakeIlluminance returns scripted ADC samples.
// If samples are exhausted, the last sample repeats.
type FakeIlluminance struct {
	Samples   []int32
	ReadError error
	Reads     int

	index int
}

func (f *FakeIlluminance) Read() (int32, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return next(f.Samples, &f.index)
}

// FakeEnvironment returns scripted climate samples.
type FakeEnvironment struct {
	Samples     []Climate
	DetectError error
	ReadError   error
	Reads       int

	index int
}

func (f *FakeEnvironment) Detect() error { return f.DetectError }

func (f *FakeEnvironment) Read() (Climate, error) {
	f.Reads++
	if f.ReadError != nil {
		return Climate{}, f.ReadError
	}
	if len(f.Samples) == 0 {
		return Climate{}, errNoSamples
	}
	c := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return c, nil
}

// FakeBusLight records the start / read / power-down protocol.
type FakeBusLight struct {
	Samples     []int32
	DetectError error
	ReadError   error

	// Calls records protocol calls in order: "start", "result", "powerdown".
	Calls []string
	Modes []uint8

	index int
}

func (f *FakeBusLight) Detect(mode uint8) error { return f.DetectError }

func (f *FakeBusLight) Start(mode uint8) error {
	f.Calls = append(f.Calls, "start")
	f.Modes = append(f.Modes, mode)
	return nil
}

func (f *FakeBusLight) Result() (int32, error) {
	f.Calls = append(f.Calls, "result")
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	return next(f.Samples, &f.index)
}

func (f *FakeBusLight) PowerDown() error {
	f.Calls = append(f.Calls, "powerdown")
	return nil
}

// FakeBattery returns a fixed voltage.
type FakeBattery struct {
	MV        int32
	ReadError error
	Reads     int
}

func (f *FakeBattery) Millivolts() (int32, error) {
	f.Reads++
	return f.MV, f.ReadError
}

func next(samples []int32, index *int) (int32, error) {
	if len(samples) == 0 {
		return 0, errNoSamples
	}
	v := samples[*index]
	if *index < len(samples)-1 {
		*index++
	}
	return v, nil
}
