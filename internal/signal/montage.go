package signal

// Channel profiles per montage. The demo montage leans on textbook EEG
// rhythms: occipital alpha, frontal theta, central beta. The knee montage
// bends the aperiodic component so the knee fitting mode has something to
// find.
var montages = map[string]map[string]Profile{
	"demo": {
		"Cz": {Offset: -1.0, Exponent: 1.2, Peaks: []Peak{
			{Freq: 10, Amp: 0.6, Width: 1.2},
			{Freq: 21, Amp: 0.3, Width: 2.0},
		}},
		"Fz": {Offset: -0.8, Exponent: 1.4, Peaks: []Peak{
			{Freq: 6, Amp: 0.5, Width: 1.0},
			{Freq: 19, Amp: 0.25, Width: 2.2},
		}},
		"Pz": {Offset: -1.1, Exponent: 1.1, Peaks: []Peak{
			{Freq: 10.5, Amp: 0.8, Width: 1.4},
		}},
		"Oz": {Offset: -1.2, Exponent: 1.0, Peaks: []Peak{
			{Freq: 10, Amp: 1.0, Width: 1.5},
		}},
		"T7": {Offset: -0.9, Exponent: 1.3, Peaks: []Peak{
			{Freq: 9, Amp: 0.35, Width: 1.8},
		}},
		"T8": {Offset: -0.9, Exponent: 1.3, Peaks: []Peak{
			{Freq: 9.5, Amp: 0.3, Width: 1.8},
		}},
	},
	"knee": {
		"Cz": {Offset: 0.2, Exponent: 2.0, Knee: 150, Peaks: []Peak{
			{Freq: 10, Amp: 0.6, Width: 1.2},
		}},
		"Fz": {Offset: 0.4, Exponent: 2.2, Knee: 200, Peaks: []Peak{
			{Freq: 6, Amp: 0.5, Width: 1.0},
		}},
		"Oz": {Offset: 0.1, Exponent: 1.8, Knee: 100, Peaks: []Peak{
			{Freq: 10, Amp: 0.9, Width: 1.5},
		}},
	},
}

var montageOrder = map[string][]string{
	"demo": {"Cz", "Fz", "Pz", "Oz", "T7", "T8"},
	"knee": {"Cz", "Fz", "Oz"},
}

// Montages lists the available montage names.
func Montages() []string {
	return []string{"demo", "knee"}
}

// ChannelProfile returns the generating profile for a montage channel, if
// present. Tests use it to compare fitted parameters against ground truth.
func ChannelProfile(montage, channel string) (Profile, bool) {
	chans, ok := montages[montage]
	if !ok {
		return Profile{}, false
	}
	p, ok := chans[channel]
	return p, ok
}
