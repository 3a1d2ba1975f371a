package weather

import "strconv"

// Kind is the icon category for a WMO weather code.
type Kind string

const (
	KindClear   Kind = "clear"
	KindPartly  Kind = "partly"
	KindCloudy  Kind = "cloudy"
	KindFog     Kind = "fog"
	KindDrizzle Kind = "drizzle"
	KindRain    Kind = "rain"
	KindSnow    Kind = "snow"
	KindThunder Kind = "thunder"
	KindUnknown Kind = "unknown"
)

// Visual is the category and human label shown for a weather code.
type Visual struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// Describe maps a WMO weather code to its visual. A nil code means the
// backend had no value.
func Describe(code *int) Visual {
	if code == nil {
		return Visual{Kind: KindUnknown, Label: "No data"}
	}

	c := *code
	switch {
	case c == 0:
		return Visual{Kind: KindClear, Label: "Clear"}
	case c == 1:
		return Visual{Kind: KindClear, Label: "Mostly clear"}
	case c == 2:
		return Visual{Kind: KindPartly, Label: "Partly cloudy"}
	case c == 3:
		return Visual{Kind: KindCloudy, Label: "Overcast"}
	case c == 45 || c == 48:
		return Visual{Kind: KindFog, Label: "Fog"}
	case c >= 51 && c <= 57:
		return Visual{Kind: KindDrizzle, Label: "Drizzle"}
	case c >= 61 && c <= 67:
		return Visual{Kind: KindRain, Label: "Rain"}
	case c >= 71 && c <= 77:
		return Visual{Kind: KindSnow, Label: "Snow"}
	case c >= 80 && c <= 82:
		return Visual{Kind: KindRain, Label: "Rain showers"}
	case c >= 85 && c <= 86:
		return Visual{Kind: KindSnow, Label: "Snow showers"}
	case c >= 95 && c <= 99:
		return Visual{Kind: KindThunder, Label: "Thunderstorm"}
	default:
		return Visual{Kind: KindUnknown, Label: "code " + strconv.Itoa(c)}
	}
}
