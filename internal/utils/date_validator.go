package utils

import (
	"fmt"
	"strings"
	"time"
)

type DateFormat string

const (
	FormatISO8601Date DateFormat = "2006-01-02"
	FormatUSDate      DateFormat = "01/02/2006"
	FormatUSDateLoose DateFormat = "1/2/2006"
	FormatRFC3339     DateFormat = time.RFC3339
)

type DateValidator struct {
	supportedFormats []DateFormat
}

type ValidationResult struct {
	IsValid        bool
	DetectedFormat DateFormat
	ParsedTime     time.Time
	OriginalValue  string
}

// NewDateValidator accepts only the given formats, in order. With none it accepts the US
// and ISO calendar formats used across the portal.
func NewDateValidator(formats ...DateFormat) *DateValidator {
	if len(formats) == 0 {
		formats = []DateFormat{FormatUSDate, FormatUSDateLoose, FormatISO8601Date, FormatRFC3339}
	}
	return &DateValidator{supportedFormats: formats}
}

// ValidateAndConvert parses input as a calendar date. Impossible dates such as 02/30 fail.
func (dv *DateValidator) ValidateAndConvert(input string) ValidationResult {
	result := ValidationResult{OriginalValue: input}

	input = strings.TrimSpace(input)
	if input == "" {
		return result
	}

	for _, format := range dv.supportedFormats {
		parsed, err := time.Parse(string(format), input)
		if err != nil {
			continue
		}
		parsed = DateOnly(parsed)
		result.IsValid = true
		result.DetectedFormat = format
		result.ParsedTime = parsed
		return result
	}

	return result
}

var (
	usDates  = NewDateValidator(FormatUSDate, FormatUSDateLoose)
	isoDates = NewDateValidator(FormatISO8601Date)
)

// ParseUSDate reads MM/DD/YYYY, the format the shopping screens submit.
func ParseUSDate(input string) (time.Time, error) {
	result := usDates.ValidateAndConvert(input)
	if !result.IsValid {
		return time.Time{}, fmt.Errorf("%q is not a MM/DD/YYYY date", input)
	}
	return result.ParsedTime, nil
}

func ParseISODate(input string) (time.Time, error) {
	result := isoDates.ValidateAndConvert(input)
	if !result.IsValid {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date", input)
	}
	return result.ParsedTime, nil
}

func FormatUS(t time.Time) string {
	return t.Format(string(FormatUSDate))
}
