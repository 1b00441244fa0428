package sensors

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "value")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestADCIlluminance(t *testing.T) {
	a := ADCIlluminance{Path: writeFile(t, "1234\n")}
	v, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, int32(1234), v)
}

func TestADCIlluminanceMalformed(t *testing.T) {
	a := ADCIlluminance{Path: writeFile(t, "garbage")}
	_, err := a.Read()
	assert.Error(t, err)
}

func TestADCIlluminanceMissing(t *testing.T) {
	a := ADCIlluminance{Path: filepath.Join(t.TempDir(), "missing")}
	_, err := a.Read()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSupplyBattery(t *testing.T) {
	b := SupplyBattery{Path: writeFile(t, "2950000\n")}
	mv, err := b.Millivolts()
	require.NoError(t, err)
	assert.Equal(t, int32(2950), mv)
}

func TestClimateFromEnv(t *testing.T) {
	env := physic.Env{
		Temperature: physic.ZeroCelsius + 21*physic.Celsius + 370*physic.MilliKelvin,
		Pressure:    101325 * physic.Pascal,
		Humidity:    45*physic.PercentRH + 5*physic.MilliRH,
	}
	c := climateFromEnv(env)
	assert.Equal(t, int32(2137), c.TemperatureCenti)
	assert.Equal(t, int32(101325), c.PressurePa)
	assert.Equal(t, int32(4550), c.HumidityCenti)
	assert.Equal(t, int32(1013), c.PressureHPa())
}

func TestBH1750Lux(t *testing.T) {
	assert.Equal(t, int32(100), bh1750Lux([2]byte{0x00, 120}, 0x20))
	assert.Equal(t, int32(50), bh1750Lux([2]byte{0x00, 120}, 0x21))
	assert.Equal(t, int32(54612), bh1750Lux([2]byte{0xFF, 0xFF}, 0x10))
}

func TestFakeIlluminanceRepeatsLast(t *testing.T) {
	f := &FakeIlluminance{Samples: []int32{1, 2}}
	for _, want := range []int32{1, 2, 2} {
		v, err := f.Read()
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}
	assert.Equal(t, 3, f.Reads)
}

func TestFakeEnvironmentNoSamples(t *testing.T) {
	f := &FakeEnvironment{}
	_, err := f.Read()
	assert.Error(t, err)
}
