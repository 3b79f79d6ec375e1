package midi

import (
	"sort"
	"strconv"

	"drum-practice/score"
)

// Kit maps trigger notes from a drum module to drum labels
type Kit struct {
	Name  string
	Notes map[uint8]string
}

// Kits contains the built-in trigger mappings
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: map[uint8]string{
			35: score.Kick,  // Acoustic Bass Drum
			36: score.Kick,  // Bass Drum 1
			38: score.Snare, // Acoustic Snare
			40: score.Snare, // Electric Snare
			42: score.HiHat, // Closed HH
			44: score.HiHat, // Pedal HH
			46: score.HiHat, // Open HH
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: map[uint8]string{
			36: score.Kick,  // BD
			40: score.Snare, // SD - RD-8 uses 40, not 38!
			42: score.HiHat, // CH
			46: score.HiHat, // OH
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: map[uint8]string{
			36: score.Kick,
			38: score.Snare,
			42: score.HiHat,
			46: score.HiHat,
		},
	},
	"er1": {
		Name: "Korg ER-1",
		Notes: map[uint8]string{
			36: score.Kick,  // Perc Synth 1
			38: score.Snare, // Perc Synth 2
			42: score.HiHat, // Closed HH (PCM)
			46: score.HiHat, // Open HH (PCM)
		},
	},
}

// DefaultKitName is used when no kit is configured
const DefaultKitName = "gm"

// KitNames returns the available kit names, sorted
func KitNames() []string {
	names := make([]string, 0, len(Kits))
	for name := range Kits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetKit returns a kit by name, defaulting to GM if not found
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits[DefaultKitName]
}

// DefaultKit returns the General MIDI kit
func DefaultKit() Kit {
	return Kits[DefaultKitName]
}

// Lookup returns the drum label for a trigger note
func (k Kit) Lookup(note uint8) (string, bool) {
	label, ok := k.Notes[note]
	return label, ok
}

// Label returns the drum label for a trigger note, or the note number itself
// when the kit has no mapping. Unmapped hits keep their raw label so they
// can never be mistaken for a notated drum.
func (k Kit) Label(note uint8) string {
	if label, ok := k.Lookup(note); ok {
		return label
	}
	return strconv.Itoa(int(note))
}
