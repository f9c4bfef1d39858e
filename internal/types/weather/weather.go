package weather

// Entry is one day of forecast data shaped for the mobile client. The
// current-conditions entry carries only day/weather/temp; daily entries
// add humidity and wind speed.
type Entry struct {
	Day       string  `json:"day"`
	Weather   string  `json:"weather"`
	Temp      float64 `json:"temp"`
	Humidity  int     `json:"humidity,omitempty"`
	WindSpeed float64 `json:"wind_speed,omitempty"`
}

type Report struct {
	Data []Entry `json:"data"`
}
