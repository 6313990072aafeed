package testpattern

import (
	"testing"

	emucore "github.com/user-none/ecytrus/api"
)

func TestSerializeRoundTrip(t *testing.T) {
	c := newTestCore()
	c.SetOption(OptionPattern, PatternGradient)
	c.SetOption(OptionTone, "880")
	c.SetInput(1, 0x5)
	c.SetAnalog(3, emucore.StickCStick, -0.5, 0.25)
	c.SetTouch(true, 12, 34)
	for i := 0; i < 10; i++ {
		c.RunFrame()
	}

	data, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(data) != SerializeSize {
		t.Fatalf("len = %d, want %d", len(data), SerializeSize)
	}

	c.RunFrame()
	want := append([]float32(nil), c.AudioSamplesFloat()...)

	restored := newTestCore()
	padded := append(append([]byte(nil), data...), make([]byte, 32)...)
	if err := restored.Deserialize(padded); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}

	if restored.FrameCount() != 10 {
		t.Errorf("FrameCount() = %d, want 10", restored.FrameCount())
	}
	if restored.pattern != PatternGradient || restored.toneHz != 880 {
		t.Errorf("options = %q %f", restored.pattern, restored.toneHz)
	}
	if restored.buttons[1] != 0x5 {
		t.Errorf("buttons[1] = %#x", restored.buttons[1])
	}
	if restored.analog[3][emucore.StickCStick] != [2]float64{-0.5, 0.25} {
		t.Errorf("analog = %v", restored.analog[3][emucore.StickCStick])
	}
	if !restored.touchActive || restored.touchX != 12 || restored.touchY != 34 {
		t.Error("touch not restored")
	}

	restored.RunFrame()
	got := restored.AudioSamplesFloat()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %f after restore, want %f", i, got[i], want[i])
		}
	}
}

func TestDeserializeRejects(t *testing.T) {
	c := newTestCore()
	c.RunFrame()
	data, _ := c.Serialize()

	tests := []struct {
		name   string
		target *Core
		data   func() []byte
		want   error
	}{
		{"short", c, func() []byte { return data[:SerializeSize-1] }, errStateTooShort},
		{"magic", c, func() []byte {
			d := append([]byte(nil), data...)
			d[0] = 'X'
			return d
		}, errStateMagic},
		{"version", c, func() []byte {
			d := append([]byte(nil), data...)
			d[4] = 9
			return d
		}, errStateVersion},
		{"other content", New([]byte("other"), nil), func() []byte { return data }, errStateWrongContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.target.FrameCount()
			if err := tc.target.Deserialize(tc.data()); err != tc.want {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
			if tc.target.FrameCount() != before {
				t.Error("state changed on failed restore")
			}
		})
	}
}
