package screens

import (
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"

	"cav/flightrelay/internal/client"
	"cav/flightrelay/internal/constants"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup the airline site embeds in display fields.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

// FormatDuration renders decimal hours as HH:MM.
func FormatDuration(hours float64) string {
	if hours <= 0 {
		return "00:00"
	}
	total := int(math.Round(hours * 60))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatDistance renders a distance in nautical miles.
func FormatDistance(nm float64) string {
	return fmt.Sprintf("%.0fnm", nm)
}

// describeFlightSearchError separates unparseable listings from failed fetches.
func describeFlightSearchError(err error) string {
	var rerr *client.RelayError
	if errors.As(err, &rerr) && rerr.Kind == client.KindMalformed {
		return constants.MsgParseFlights
	}
	return constants.MsgFailedFlights
}
