package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/showbridge/midirelay/sdk/contracts"
)

// MSC broadcast / fallback byte for device id and command format.
const mscAllCall = 0x7F

// mscCommandFormats maps MSC command format names to their wire byte, per the
// MSC specification's equipment categories.
var mscCommandFormats = map[string]byte{
	"lighting.general":           0x01,
	"moving.lights":              0x02,
	"color.changers":             0x03,
	"strobes":                    0x04,
	"lasers":                     0x05,
	"chasers":                    0x06,
	"sound.general":              0x10,
	"music":                      0x11,
	"cd.players":                 0x12,
	"eprom.playback":             0x13,
	"audio.tape.machines":        0x14,
	"intercoms":                  0x15,
	"amplifiers":                 0x16,
	"audio.effects.devices":      0x17,
	"equalizers":                 0x18,
	"machinery.general":          0x20,
	"rigging":                    0x21,
	"flys":                       0x22,
	"lifts":                      0x23,
	"turntables":                 0x24,
	"trusses":                    0x25,
	"robots":                     0x26,
	"animation":                  0x27,
	"floats":                     0x28,
	"breakaways":                 0x29,
	"barges":                     0x2A,
	"video.general":              0x30,
	"video.tape.machines":        0x31,
	"video.cassette.machines":    0x32,
	"video.disc.players":         0x33,
	"video.switchers":            0x34,
	"video.effects":              0x35,
	"video.character.generators": 0x36,
	"video.still.stores":         0x37,
	"video.monitors":             0x38,
	"projection.general":         0x40,
	"film.projectors":            0x41,
	"slide.projectors":           0x42,
	"video.projectors":           0x43,
	"dissolvers":                 0x44,
	"shutter.controls":           0x45,
	"processcontrol.general":     0x50,
	"hydraulic.oil":              0x51,
	"h2o":                        0x52,
	"co2":                        0x53,
	"compressed.air":             0x54,
	"natural.gas":                0x55,
	"fog":                        0x56,
	"smoke":                      0x57,
	"cracked.haze":               0x58,
	"pyro.general":               0x60,
	"fireworks":                  0x61,
	"explosions":                 0x62,
	"flame":                      0x63,
	"smoke.pots":                 0x64,
	"all":                        0x7F,
}

// mscCommands maps MSC command names to their wire byte.
var mscCommands = map[string]byte{
	"go":             0x01,
	"stop":           0x02,
	"resume":         0x03,
	"timed_go":       0x04,
	"load":           0x05,
	"set":            0x06,
	"fire":           0x07,
	"all_off":        0x08,
	"restore":        0x09,
	"reset":          0x0A,
	"go_off":         0x0B,
	"gojam":          0x10,
	"standby_plus":   0x11,
	"standby_minus":  0x12,
	"sequence_plus":  0x13,
	"sequence_minus": 0x14,
	"start_clock":    0x15,
	"stop_clock":     0x16,
}

// EncodeMSC builds an MSC sysex frame from the request's MSC fields. Unknown
// names never fail: an unrecognized device id or command format falls back to
// the all-call byte, an unrecognized command falls back to "go". Every
// fallback taken is reported in the returned warnings so callers can surface
// a typo'd trigger configuration.
func EncodeMSC(req contracts.OutboundMidiRequest) ([]byte, []string) {
	var warnings []string

	deviceID, ok := mscDeviceID(req.DeviceID)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("unrecognized MSC device id %q, broadcasting to all", req.DeviceID))
	}

	format, ok := mscCommandFormats[strings.ToLower(strings.TrimSpace(req.CommandFormat))]
	if !ok {
		format = mscAllCall
		warnings = append(warnings, fmt.Sprintf("unrecognized MSC command format %q, using all-call", req.CommandFormat))
	}

	command, ok := mscCommands[strings.ToLower(strings.TrimSpace(req.Command))]
	if !ok {
		command = mscCommands["go"]
		warnings = append(warnings, fmt.Sprintf("unrecognized MSC command %q, defaulting to go", req.Command))
	}

	data := []byte{0xF0, 0x7F, deviceID, 0x02, format, command}
	// Cue data is appended as raw ASCII; cue list and cue path each carry a
	// single 0x00 separator in front.
	if req.Cue != "" {
		data = append(data, []byte(req.Cue)...)
	}
	if req.CueList != "" {
		data = append(data, 0x00)
		data = append(data, []byte(req.CueList)...)
	}
	if req.CuePath != "" {
		data = append(data, 0x00)
		data = append(data, []byte(req.CuePath)...)
	}
	data = append(data, 0xF7)

	return data, warnings
}

// mscDeviceID resolves a device id: a number in [0,111] passes through, "all"
// is the all-call byte, "g1".."g15" address groups. Anything else broadcasts;
// the second return value reports whether the input was recognized.
func mscDeviceID(s string) (byte, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	// An absent device id addresses everyone, same as "all".
	if s == "" || s == "all" {
		return mscAllCall, true
	}
	if strings.HasPrefix(s, "g") {
		if n, err := strconv.Atoi(s[1:]); err == nil && n >= 1 && n <= 15 {
			return 0x70 + byte(n-1), true
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 111 {
		return byte(n), true
	}
	return mscAllCall, false
}
