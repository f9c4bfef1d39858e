package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"chatterAPI/internal/types/weather"
)

// ErrLocationNotFound reports an upstream rejection of the lat/long pair.
var ErrLocationNotFound = errors.New("location not found")

const defaultWeatherURL = "https://api.openweathermap.org/data/2.5/onecall"

// WeatherService proxies the OpenWeather one-call API, shaping the
// response into the week view the mobile client renders: current
// conditions plus the next six days.
type WeatherService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewWeatherService(apiKey string) *WeatherService {
	return &WeatherService{
		client:  &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultWeatherURL,
	}
}

type openWeatherResponse struct {
	Current struct {
		Dt      int64   `json:"dt"`
		Temp    float64 `json:"temp"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"current"`
	Daily []struct {
		Dt   int64 `json:"dt"`
		Temp struct {
			Day float64 `json:"day"`
		} `json:"temp"`
		Humidity  int     `json:"humidity"`
		WindSpeed float64 `json:"wind_speed"`
		Weather   []struct {
			Main string `json:"main"`
		} `json:"weather"`
	} `json:"daily"`
}

// Forecast fetches weather for a lat/long pair.
func (s *WeatherService) Forecast(ctx context.Context, lat, long string) (*weather.Report, error) {
	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", long)
	q.Set("exclude", "minutely,hourly,alerts")
	q.Set("units", "imperial")
	q.Set("appid", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return nil, ErrLocationNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var data openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}
	if len(data.Current.Weather) == 0 {
		return nil, ErrLocationNotFound
	}

	report := &weather.Report{Data: []weather.Entry{{
		Day:     "Today",
		Weather: data.Current.Weather[0].Main,
		Temp:    data.Current.Temp,
	}}}
	for i := 1; i < len(data.Daily) && i < 7; i++ {
		d := data.Daily[i]
		if len(d.Weather) == 0 {
			continue
		}
		report.Data = append(report.Data, weather.Entry{
			Day:       dayLabel(d.Dt),
			Weather:   d.Weather[0].Main,
			Temp:      d.Temp.Day,
			Humidity:  d.Humidity,
			WindSpeed: d.WindSpeed,
		})
	}
	return report, nil
}

// dayLabel renders a forecast timestamp the way the client expects, e.g.
// "Tue 14". The abbreviations (including "Th") are part of the client
// contract.
func dayLabel(dt int64) string {
	days := [...]string{"Sun", "Mon", "Tue", "Wed", "Th", "Fri", "Sat"}
	t := time.Unix(dt, 0)
	return fmt.Sprintf("%s %d", days[int(t.Weekday())], t.Day())
}
