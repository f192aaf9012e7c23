package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/i474232898/weather-dashboard/internal/session"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

func renderState(w io.Writer, st session.State, now time.Time) {
	if st.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", st.Error)
		return
	}
	if st.Weather == nil {
		fmt.Fprintln(w, "No weather loaded.")
		return
	}
	renderWeather(w, st.Weather, st.Forecast, st.AirQuality, st.Unit, now)
}

func renderWeather(w io.Writer, current *weather.WeatherSnapshot, forecast *weather.Forecast, air *weather.AirQuality, unit weather.Unit, now time.Time) {
	title := current.Name
	if current.Sys.Country != "" {
		title += ", " + current.Sys.Country
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if cond, ok := current.PrimaryCondition(); ok {
		fmt.Fprintf(tw, "Conditions\t%s (%s)\n", cond.Description, weather.CategoryFor(cond.ID))
	}
	fmt.Fprintf(tw, "Temperature\t%s (feels like %s)\n",
		weather.FormatTemp(current.Main.Temp, unit), weather.FormatTemp(current.Main.FeelsLike, unit))
	fmt.Fprintf(tw, "Humidity\t%.0f%%\n", current.Main.Humidity)

	wind := weather.FormatWindSpeed(current.Wind.Speed, unit)
	if dir, err := weather.WindCompassLabel(current.Wind.Deg); err == nil {
		wind += " " + dir
	}
	fmt.Fprintf(tw, "Wind\t%s\n", wind)
	fmt.Fprintf(tw, "Period\t%s\n", weather.ClassifyDayPeriod(current.Sys.Sunrise, current.Sys.Sunset, now.Unix()))

	if air != nil {
		if sample, ok := air.Current(); ok {
			tier := weather.AQITier(sample.Main.AQI)
			fmt.Fprintf(tw, "Air quality\t%s (PM2.5 %.1f μg/m3)\n", tier.Label, sample.Components.PM25)
		}
	}
	tw.Flush()

	if forecast == nil {
		return
	}
	days, err := weather.SummarizeByDay(forecast.List)
	if err != nil {
		fmt.Fprintf(w, "\nForecast unavailable: %v\n", err)
		return
	}
	if len(days) == 0 {
		return
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Day\tLow\tHigh\tConditions\tRain")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.0f%%\n",
			weather.DayLabel(d.Date, now),
			weather.FormatTemp(d.Temp.Min, unit),
			weather.FormatTemp(d.Temp.Max, unit),
			d.Condition.Main,
			d.Pop*100)
	}
	tw.Flush()
}

func renderFavorites(w io.Writer, favs []weather.FavoriteCity) {
	if len(favs) == 0 {
		fmt.Fprintln(w, "No favorites yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tCountry\tCoordinates\tAdded")
	for _, f := range favs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f,%.4f\t%s\n",
			f.ID, f.Name, f.Country, f.Coord.Lat, f.Coord.Lon,
			time.UnixMilli(f.AddedAt).Format("2006-01-02"))
	}
	tw.Flush()
}

func renderLastViewed(w io.Writer, lv *session.LastViewed, unit weather.Unit, now time.Time) {
	if lv == nil || lv.Weather == nil {
		fmt.Fprintln(w, "Nothing viewed yet.")
		return
	}
	// Records written before the unit was cached fall back to the preference.
	if lv.Unit.Valid() {
		unit = lv.Unit
	}
	fmt.Fprintf(w, "Last viewed %s at %s\n\n", lv.City, time.UnixMilli(lv.Timestamp).Format(time.RFC1123))
	renderWeather(w, lv.Weather, lv.Forecast, lv.AirQuality, unit, now)
}
