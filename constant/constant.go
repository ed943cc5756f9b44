package constant

const (
	DIR_RIGHT, ACT_A    = 0x00, 0x00
	DIR_LEFT, ACT_B     = 0x01, 0x01
	DIR_UP, ACT_SELECT  = 0x02, 0x02
	DIR_DOWN, ACT_START = 0x03, 0x03
	LCD_WIDTH           = 160
	LCD_HEIGHT          = 144
	TICKS_PER_LINE      = 456
	LINES_PER_FRAME     = 154
	FRAME_TICKS         = TICKS_PER_LINE * LINES_PER_FRAME
	TICKS_PER_CYCLE     = 4
	CPU_FREQ            = 4194304
	AUDIO_FREQ          = 44100
	AUDIO_SAMPLES       = 1024
	CHANNELS            = 2
	AUDIO_QUEUE_SIZE    = 4
	BATTERY_SIZE        = 0x2000
	WINDOW_TITLE        = "gbemu"
	WINDOW_SCALE        = 4
)

// DMG shades, packed ARGB.
const (
	COLOR_WHITE      uint32 = 0xffffffff
	COLOR_LIGHT_GRAY uint32 = 0xffaaaaaa
	COLOR_DARK_GRAY  uint32 = 0xff555555
	COLOR_BLACK      uint32 = 0xff000000
)
