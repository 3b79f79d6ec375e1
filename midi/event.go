package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Hit is a drum trigger forwarded by a Capture
type Hit struct {
	Beat     float64 // clock index when the hit arrived
	Label    string
	Channel  uint8
	Note     uint8
	Velocity uint8
}
