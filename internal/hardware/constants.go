package hardware

const (
	Consumer = "otp-lock"

	DefaultChip = "gpiochip0"

	ChannelLocked   = "led_locked"
	ChannelWaiting  = "led_waiting"
	ChannelUnlocked = "led_unlocked"
	ChannelRequest  = "unlock_request"

	// KeypadLineCount covers port bits 1..7; bit 0 is the request line.
	KeypadLineCount = 7
)

// Layout assigns line offsets on one GPIO chip.
type Layout struct {
	Chip        string
	Outputs     map[string]int
	Request     int
	KeypadLines [KeypadLineCount]int // port bits 1..7
}

// DefaultLayout follows the Raspberry Pi header wiring of the reference build.
var DefaultLayout = Layout{
	Chip: DefaultChip,
	Outputs: map[string]int{
		ChannelLocked:   16,
		ChannelWaiting:  20,
		ChannelUnlocked: 21,
	},
	Request:     17,
	KeypadLines: [KeypadLineCount]int{5, 6, 13, 19, 26, 12, 25},
}
