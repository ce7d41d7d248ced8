package ledger

import (
	"strconv"
	"time"

	"github.com/goliatone/go-errors"
)

// DateRange narrows a transaction listing. Zero value means no filter.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange interprets the range/from/to query parameters:
// "all" or empty means everything, "custom" requires from and to as
// YYYY-MM-DD, and anything else must be a positive number of days
// counted back from the start of today.
func ParseDateRange(rangeParam, from, to string) (DateRange, error) {
	if rangeParam == "" || rangeParam == "all" {
		return DateRange{}, nil
	}

	if rangeParam == "custom" {
		if from == "" || to == "" {
			return DateRange{}, errors.New(
				"'from' and 'to' query parameters are required for custom range",
				errors.CategoryBadInput,
			).WithCode(errors.CodeBadRequest)
		}

		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return DateRange{}, errors.New(
				"'from' and 'to' must be valid dates (YYYY-MM-DD)",
				errors.CategoryBadInput,
			).WithCode(errors.CodeBadRequest)
		}

		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			return DateRange{}, errors.New(
				"'from' and 'to' must be valid dates (YYYY-MM-DD)",
				errors.CategoryBadInput,
			).WithCode(errors.CodeBadRequest)
		}

		if fromDate.After(toDate) {
			return DateRange{}, errors.New(
				"'from' date must be before or equal to 'to' date",
				errors.CategoryBadInput,
			).WithCode(errors.CodeBadRequest)
		}

		// Include the whole 'to' day.
		toDate = toDate.Add(24*time.Hour - time.Nanosecond)

		return DateRange{From: &fromDate, To: &toDate}, nil
	}

	days, err := strconv.Atoi(rangeParam)
	if err != nil || days <= 0 {
		return DateRange{}, errors.New(
			"'range' must be a positive number of days, 'custom', or 'all'",
			errors.CategoryBadInput,
		).WithCode(errors.CodeBadRequest)
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -days)

	return DateRange{From: &start}, nil
}
