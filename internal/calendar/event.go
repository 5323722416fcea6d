package calendar

import (
	"strconv"
	"time"
)

// Event is the widget-facing shape: FullCalendar reads these fields
// as-is, so the JSON names are part of the contract.
type Event struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Start         string         `json:"start"`
	End           string         `json:"end"`
	AllDay        bool           `json:"allDay"`
	Color         string         `json:"color"`
	TextColor     string         `json:"textColor"`
	ExtendedProps map[string]any `json:"extendedProps,omitempty"`
}

// ContrastTextColor picks black or white text for a hex background
// using the ITU-R BT.601 luma weights. Widget contrast depends on this
// exact formula, so keep the coefficients and threshold as they are.
func ContrastTextColor(hexColor string) string {
	r, g, b, ok := parseHexColor(hexColor)
	if !ok {
		return "#ffffff"
	}

	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if luminance > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

func parseHexColor(s string) (r, g, b uint8, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	rv, err := strconv.ParseUint(s[1:3], 16, 8)
	if err != nil {
		return 0, 0, 0, false
	}
	gv, err := strconv.ParseUint(s[3:5], 16, 8)
	if err != nil {
		return 0, 0, 0, false
	}
	bv, err := strconv.ParseUint(s[5:7], 16, 8)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(rv), uint8(gv), uint8(bv), true
}

func eventFromEntry(e CalendarEntry) Event {
	ev := Event{
		ID:        e.ID.String(),
		Title:     e.Title,
		Start:     e.StartDate.Format("2006-01-02"),
		End:       exclusiveEnd(e.EndDate),
		AllDay:    true,
		Color:     e.Color,
		TextColor: ContrastTextColor(e.Color),
		ExtendedProps: map[string]any{
			"source": e.Source,
		},
	}
	if e.UserID != nil {
		ev.ExtendedProps["user_id"] = e.UserID.String()
	}
	return ev
}

func eventFromHoliday(h Holiday) Event {
	return Event{
		ID:        h.ID.String(),
		Title:     h.Name,
		Start:     h.Date.Format("2006-01-02"),
		End:       exclusiveEnd(h.Date),
		AllDay:    true,
		Color:     h.Color,
		TextColor: ContrastTextColor(h.Color),
		ExtendedProps: map[string]any{
			"source": SourceHoliday,
		},
	}
}

// FullCalendar treats all-day end dates as exclusive.
func exclusiveEnd(endDate time.Time) string {
	return endDate.AddDate(0, 0, 1).Format("2006-01-02")
}
