package logic

import "testing"

func TestSampleBelowThresholdSuppressed(t *testing.T) {
	m := Measurement{LastReported: 500, Present: true}

	if m.Sample(550, QuantityIlluminance.Threshold(), ModeGated) {
		t.Error("expected no report for delta 50 against threshold 100")
	}
	if m.LastReported != 500 {
		t.Errorf("LastReported: got %d, want 500", m.LastReported)
	}
	if m.Current != 550 {
		t.Errorf("Current: got %d, want 550", m.Current)
	}

	if !m.Sample(601, QuantityIlluminance.Threshold(), ModeGated) {
		t.Error("expected report for delta 101 against threshold 100")
	}
	if m.LastReported != 601 {
		t.Errorf("LastReported: got %d, want 601", m.LastReported)
	}
}

func TestSampleExactlyThresholdSuppressed(t *testing.T) {
	m := Measurement{LastReported: 2000}
	if m.Sample(2050, QuantityTemperature.Threshold(), ModeGated) {
		t.Error("delta equal to threshold must not report")
	}
	if m.Sample(1950, QuantityTemperature.Threshold(), ModeGated) {
		t.Error("negative delta equal to threshold must not report")
	}
	if !m.Sample(1949, QuantityTemperature.Threshold(), ModeGated) {
		t.Error("negative delta above threshold must report")
	}
	if m.LastReported != 1949 {
		t.Errorf("LastReported: got %d, want 1949", m.LastReported)
	}
}

func TestSampleUnconditionalReportsEveryPass(t *testing.T) {
	m := Measurement{LastReported: 40}

	for i := 0; i < 3; i++ {
		if !m.Sample(40, QuantityBusIlluminance.Threshold(), ModeUnconditional) {
			t.Fatalf("pass %d: unconditional pass must report unchanged value", i)
		}
	}

	// A later gated pass must compare against what was actually sent.
	m.LastReported = 0
	m.Sample(45, QuantityBusIlluminance.Threshold(), ModeUnconditional)
	if m.Sample(50, QuantityBusIlluminance.Threshold(), ModeGated) {
		t.Error("gated pass after unconditional report must compare to reported value")
	}
}

func TestSampleReportIffProperty(t *testing.T) {
	samples := []int32{0, 5, 200, 180, 95, 96, -20, -20, 1000, 1000, 899, 898}
	for _, mode := range []Mode{ModeGated, ModeUnconditional} {
		m := Measurement{}
		for i, v := range samples {
			last := m.LastReported
			want := Delta(v, last) > 100 || mode == ModeUnconditional
			got := m.Sample(v, 100, mode)
			if got != want {
				t.Errorf("%s sample %d (%d vs %d): got report=%v, want %v", mode, i, v, last, got, want)
			}
			if got && m.LastReported != v {
				t.Errorf("%s sample %d: LastReported %d after report of %d", mode, i, m.LastReported, v)
			}
			if !got && m.LastReported != last {
				t.Errorf("%s sample %d: LastReported drifted from %d to %d", mode, i, last, m.LastReported)
			}
		}
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		a, b int32
		want uint32
	}{
		{0, 0, 0},
		{10, 3, 7},
		{3, 10, 7},
		{-5, 5, 10},
		{2147483647, -2147483648, 4294967295},
	}
	for _, tt := range tests {
		if got := Delta(tt.a, tt.b); got != tt.want {
			t.Errorf("Delta(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestThresholds(t *testing.T) {
	want := map[Quantity]uint32{
		QuantityIlluminance:    100,
		QuantityBusIlluminance: 10,
		QuantityTemperature:    50,
		QuantityPressure:       1,
		QuantityHumidity:       1000,
	}
	for q, w := range want {
		if got := q.Threshold(); got != w {
			t.Errorf("%s threshold: got %d, want %d", q, got, w)
		}
	}
}

func TestScalePressure(t *testing.T) {
	tests := []struct {
		pa    int32
		scale int8
		want  int32
	}{
		{101325, 0, 101325},
		{101325, -1, 10132},
		{101325, -2, 1013},
		{101325, 1, 1013250},
		{101325, 5, 2147483647},
	}
	for _, tt := range tests {
		if got := ScalePressure(tt.pa, tt.scale); got != tt.want {
			t.Errorf("ScalePressure(%d, %d) = %d, want %d", tt.pa, tt.scale, got, tt.want)
		}
	}
}

func TestBatteryPercentage(t *testing.T) {
	tests := []struct {
		mv   int32
		want int32
	}{
		{1800, 0},
		{2000, 0},
		{2500, 100},
		{3000, 200},
		{3300, 200},
	}
	for _, tt := range tests {
		if got := BatteryPercentage(tt.mv); got != tt.want {
			t.Errorf("BatteryPercentage(%d) = %d, want %d", tt.mv, got, tt.want)
		}
	}
}
