package scene

import "github.com/gogpu/gg"

// Palette is the colour set for one display mode. Day and night share all
// geometry; only these colours differ.
type Palette struct {
	Sky, Ground gg.RGBA

	Sun, Moon, MoonShadow gg.RGBA

	BuildingFill, BuildingOutline, BuildingWindow gg.RGBA

	Platform, PlatformEdge                   gg.RGBA
	StationFill, StationOutline, StationSign gg.RGBA
	SignText                                 gg.RGBA

	Rail, Sleeper gg.RGBA

	SignalPole, SignalHead        gg.RGBA
	SignalRedOn, SignalRedOff     gg.RGBA
	SignalGreenOn, SignalGreenOff gg.RGBA

	Cloud gg.RGBA

	PassengerBody, PassengerHead, PassengerLegs gg.RGBA

	CoachBody, CoachRoof, CoachWindow, CoachOutline gg.RGBA
	DoorFrame, DoorPanel                            gg.RGBA
	Cabin, CabinWindow                              gg.RGBA
	Wheel                                           gg.RGBA
}

var dayPalette = Palette{
	Sky:    gg.RGB(0.55, 0.80, 0.98),
	Ground: gg.RGB(0.45, 0.75, 0.45),

	Sun:        gg.RGB(1.0, 0.85, 0.20),
	Moon:       gg.RGB(0.90, 0.90, 0.95),
	MoonShadow: gg.RGB(0.10, 0.10, 0.15),

	BuildingFill:    gg.RGB(0.78, 0.80, 0.86),
	BuildingOutline: gg.RGB(0.30, 0.35, 0.45),
	BuildingWindow:  gg.RGB(0.55, 0.70, 0.90),

	Platform:       gg.RGB(0.60, 0.60, 0.62),
	PlatformEdge:   gg.RGB(0.95, 0.90, 0.20),
	StationFill:    gg.RGB(0.88, 0.88, 0.90),
	StationOutline: gg.RGB(0.25, 0.30, 0.40),
	StationSign:    gg.RGB(0.20, 0.40, 0.80),
	SignText:       gg.RGB(1, 1, 1),

	Rail:    gg.RGB(0.25, 0.25, 0.25),
	Sleeper: gg.RGB(0.45, 0.30, 0.20),

	SignalPole:     gg.RGB(0.20, 0.20, 0.22),
	SignalHead:     gg.RGB(0.12, 0.12, 0.14),
	SignalRedOn:    gg.RGB(1.0, 0.15, 0.15),
	SignalRedOff:   gg.RGB(0.35, 0.10, 0.10),
	SignalGreenOn:  gg.RGB(0.15, 1.0, 0.20),
	SignalGreenOff: gg.RGB(0.10, 0.35, 0.10),

	Cloud: gg.RGB(1, 1, 1),

	PassengerBody: gg.RGB(0.20, 0.35, 0.85),
	PassengerHead: gg.RGB(1.0, 0.85, 0.70),
	PassengerLegs: gg.RGB(0.10, 0.10, 0.12),

	CoachBody:    gg.RGB(0.92, 0.22, 0.22),
	CoachRoof:    gg.RGB(0.80, 0.15, 0.15),
	CoachWindow:  gg.RGB(0.55, 0.75, 0.95),
	CoachOutline: gg.RGB(0.20, 0.20, 0.22),
	DoorFrame:    gg.RGB(0.18, 0.18, 0.20),
	DoorPanel:    gg.RGB(0.93, 0.93, 0.95),
	Cabin:        gg.RGB(0.85, 0.20, 0.20),
	CabinWindow:  gg.RGB(0.55, 0.75, 0.95),
	Wheel:        gg.RGB(0.05, 0.05, 0.05),
}

var nightPalette = Palette{
	Sky:    gg.RGB(0.08, 0.10, 0.16),
	Ground: gg.RGB(0.10, 0.18, 0.10),

	Sun:        gg.RGB(1.0, 0.85, 0.20),
	Moon:       gg.RGB(0.90, 0.90, 0.95),
	MoonShadow: gg.RGB(0.10, 0.10, 0.15),

	BuildingFill:    gg.RGB(0.15, 0.17, 0.22),
	BuildingOutline: gg.RGB(0.65, 0.70, 0.80),
	BuildingWindow:  gg.RGB(0.95, 0.85, 0.40),

	Platform:       gg.RGB(0.25, 0.25, 0.28),
	PlatformEdge:   gg.RGB(0.90, 0.85, 0.30),
	StationFill:    gg.RGB(0.18, 0.18, 0.22),
	StationOutline: gg.RGB(0.65, 0.70, 0.80),
	StationSign:    gg.RGB(0.30, 0.50, 0.90),
	SignText:       gg.RGB(1, 1, 1),

	Rail:    gg.RGB(0.55, 0.55, 0.60),
	Sleeper: gg.RGB(0.35, 0.25, 0.20),

	SignalPole:     gg.RGB(0.65, 0.65, 0.70),
	SignalHead:     gg.RGB(0.20, 0.20, 0.24),
	SignalRedOn:    gg.RGB(1.0, 0.15, 0.15),
	SignalRedOff:   gg.RGB(0.25, 0.10, 0.10),
	SignalGreenOn:  gg.RGB(0.15, 1.0, 0.20),
	SignalGreenOff: gg.RGB(0.10, 0.25, 0.10),

	Cloud: gg.RGB(0.75, 0.78, 0.85),

	PassengerBody: gg.RGB(0.35, 0.55, 0.95),
	PassengerHead: gg.RGB(0.95, 0.80, 0.65),
	PassengerLegs: gg.RGB(0.85, 0.85, 0.90),

	CoachBody:    gg.RGB(0.75, 0.18, 0.20),
	CoachRoof:    gg.RGB(0.60, 0.12, 0.14),
	CoachWindow:  gg.RGB(0.95, 0.85, 0.40),
	CoachOutline: gg.RGB(0.85, 0.85, 0.90),
	DoorFrame:    gg.RGB(0.90, 0.90, 0.95),
	DoorPanel:    gg.RGB(0.30, 0.30, 0.35),
	Cabin:        gg.RGB(0.65, 0.16, 0.18),
	CabinWindow:  gg.RGB(0.95, 0.85, 0.40),
	Wheel:        gg.RGB(0.90, 0.90, 0.95),
}

// PaletteFor returns the night palette when night is set, else the day one.
func PaletteFor(night bool) Palette {
	if night {
		return nightPalette
	}
	return dayPalette
}
