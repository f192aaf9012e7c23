package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxForecastDays is the forecast horizon the provider supports.
const MaxForecastDays = 5

const (
	dateLayout   = "2006-01-02"
	middayStamp  = "12:00:00"
	dateStampSep = " "
)

// TempRange is the min/avg/max temperature across one day's samples.
type TempRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// DailySummary is a derived view over one calendar date of forecast samples.
type DailySummary struct {
	Date      string         `json:"date"`
	Temp      TempRange      `json:"temp"`
	Condition Condition      `json:"weather"`
	Humidity  int            `json:"humidity"`
	Wind      float64        `json:"wind"`
	Pop       float64        `json:"pop"`
	Items     []ForecastItem `json:"items"`
}

// SummarizeByDay groups forecast samples by the calendar date embedded in
// their date-stamp and returns at most MaxForecastDays summaries in
// first-encountered order.
func SummarizeByDay(items []ForecastItem) ([]DailySummary, error) {
	var (
		order   []string
		buckets = make(map[string][]ForecastItem)
	)

	for _, item := range items {
		date, err := sampleDate(item)
		if err != nil {
			return nil, err
		}
		if _, seen := buckets[date]; !seen {
			order = append(order, date)
		}
		buckets[date] = append(buckets[date], item)
	}

	if len(order) > MaxForecastDays {
		order = order[:MaxForecastDays]
	}

	summaries := make([]DailySummary, 0, len(order))
	for _, date := range order {
		summaries = append(summaries, summarizeDay(date, buckets[date]))
	}
	return summaries, nil
}

func summarizeDay(date string, items []ForecastItem) DailySummary {
	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		maxPop      float64
	)

	minTemp := math.Inf(1)
	maxTemp := math.Inf(-1)

	for i, it := range items {
		sumTemp += it.Main.Temp
		sumHumidity += it.Main.Humidity
		sumWind += it.Wind.Speed

		minTemp = math.Min(minTemp, it.Main.Temp)
		maxTemp = math.Max(maxTemp, it.Main.Temp)
		if i == 0 || it.Pop > maxPop {
			maxPop = it.Pop
		}
	}

	n := float64(len(items))
	rep := representative(items)

	var cond Condition
	if len(rep.Weather) > 0 {
		cond = rep.Weather[0]
	}

	return DailySummary{
		Date: date,
		Temp: TempRange{
			Min: minTemp,
			Max: maxTemp,
			Avg: sumTemp / n,
		},
		Condition: cond,
		Humidity:  int(math.Round(sumHumidity / n)),
		Wind:      math.Round(sumWind/n*10) / 10,
		Pop:       maxPop,
		Items:     items,
	}
}

// representative picks the midday sample, falling back to the middle one.
func representative(items []ForecastItem) ForecastItem {
	for _, it := range items {
		if strings.HasSuffix(it.DtTxt, dateStampSep+middayStamp) {
			return it
		}
	}
	return items[len(items)/2]
}

func sampleDate(item ForecastItem) (string, error) {
	date, _, _ := strings.Cut(strings.TrimSpace(item.DtTxt), dateStampSep)
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("%w: forecast sample %d has malformed date-stamp %q", ErrInvalidInput, item.Dt, item.DtTxt)
	}
	return date, nil
}

// DayLabel names a summary date relative to now: "Today", "Tomorrow" or the
// short weekday.
func DayLabel(date string, now time.Time) string {
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return date
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, 1)):
		return "Tomorrow"
	default:
		return d.Format("Mon")
	}
}
