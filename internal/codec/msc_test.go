package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showbridge/midirelay/sdk/contracts"
)

func TestMSCDeviceID(t *testing.T) {
	tests := []struct {
		in         string
		want       byte
		recognized bool
	}{
		{"0", 0x00, true},
		{"50", 50, true},
		{"111", 111, true},
		{"all", 0x7F, true},
		{"", 0x7F, true},
		{"g1", 0x70, true},
		{"g3", 0x72, true},
		{"g15", 0x7E, true},
		{"g16", 0x7F, false},
		{"200", 0x7F, false},
		{"-1", 0x7F, false},
		{"backstage", 0x7F, false},
	}
	for _, tc := range tests {
		got, ok := mscDeviceID(tc.in)
		assert.Equal(t, tc.want, got, "device id %q", tc.in)
		assert.Equal(t, tc.recognized, ok, "device id %q recognized", tc.in)
	}
}

func TestEncodeMSCLayout(t *testing.T) {
	data, warnings := EncodeMSC(contracts.OutboundMidiRequest{
		DeviceID:      "0",
		CommandFormat: "lighting.general",
		Command:       "go",
		Cue:           "1",
		CueList:       "2",
		CuePath:       "3",
	})
	assert.Empty(t, warnings)
	assert.Equal(t, []byte{0xF0, 0x7F, 0x00, 0x02, 0x01, 0x01, '1', 0x00, '2', 0x00, '3', 0xF7}, data)
}

func TestEncodeMSCWithoutCueData(t *testing.T) {
	data, _ := EncodeMSC(contracts.OutboundMidiRequest{
		DeviceID:      "all",
		CommandFormat: "sound.general",
		Command:       "stop",
	})
	assert.Equal(t, []byte{0xF0, 0x7F, 0x7F, 0x02, 0x10, 0x02, 0xF7}, data)
}

func TestEncodeMSCMultiDigitCue(t *testing.T) {
	data, _ := EncodeMSC(contracts.OutboundMidiRequest{
		DeviceID:      "1",
		CommandFormat: "lighting.general",
		Command:       "go",
		Cue:           "10.5",
	})
	assert.Equal(t, []byte{0xF0, 0x7F, 0x01, 0x02, 0x01, 0x01, '1', '0', '.', '5', 0xF7}, data)
}

func TestEncodeMSCFormats(t *testing.T) {
	tests := []struct {
		format string
		want   byte
	}{
		{"lighting.general", 0x01},
		{"sound.general", 0x10},
		{"video.general", 0x30},
		{"pyro.general", 0x60},
		{"all", 0x7F},
	}
	for _, tc := range tests {
		data, warnings := EncodeMSC(contracts.OutboundMidiRequest{
			DeviceID:      "0",
			CommandFormat: tc.format,
			Command:       "go",
		})
		assert.Empty(t, warnings)
		assert.Equal(t, tc.want, data[4], "format %q", tc.format)
	}
}

func TestEncodeMSCUnknownCommandDefaultsToGo(t *testing.T) {
	data, warnings := EncodeMSC(contracts.OutboundMidiRequest{
		DeviceID:      "0",
		CommandFormat: "lighting.general",
		Command:       "goo",
	})
	assert.Equal(t, byte(0x01), data[5])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"goo"`)
	assert.Contains(t, warnings[0], "go")
}

func TestEncodeMSCUnknownFormatFallsBack(t *testing.T) {
	data, warnings := EncodeMSC(contracts.OutboundMidiRequest{
		DeviceID:      "0",
		CommandFormat: "lazers",
		Command:       "go",
	})
	assert.Equal(t, byte(0x7F), data[4])
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], `"lazers"`)
}

func TestEncodeMSCViaEncode(t *testing.T) {
	data, warnings, err := Encode(contracts.OutboundMidiRequest{
		Port:          "P",
		MidiCommand:   "msc",
		DeviceID:      "g3",
		CommandFormat: "lighting.general",
		Command:       "fire",
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []byte{0xF0, 0x7F, 0x72, 0x02, 0x01, 0x07, 0xF7}, data)

	// An MSC frame the relay encodes decodes back as msc.
	ev, ok := Decode(data)
	require.True(t, ok)
	assert.Equal(t, contracts.CommandMSC, ev.Type)
	assert.Equal(t, uint8(0x72), ev.DeviceID)
}
