package report

import (
	"context"
	"time"

	"github.com/sadopc/solartrack/internal/store"
)

// WeekRange returns Monday and Sunday of the week containing t. Sunday
// closes the week.
func WeekRange(t time.Time) (from, to string) {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	monday := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
	sunday := monday.AddDate(0, 0, 6)
	return monday.Format(store.DateLayout), sunday.Format(store.DateLayout)
}

type WeekTotals struct {
	From    string
	To      string
	Hours   float64
	Units   int
	Days    int
	Entries int
}

// WeekComparison holds this week and last week. Deltas are current minus
// previous.
type WeekComparison struct {
	Current    WeekTotals
	Previous   WeekTotals
	HoursDelta float64
	UnitsDelta int
}

func (e *Engine) week(ctx context.Context, projectID string, t time.Time) (WeekTotals, error) {
	from, to := WeekRange(t)
	entries, err := e.src.ListEntriesByProjectAndDateRange(ctx, projectID, from, to)
	if err != nil {
		return WeekTotals{}, err
	}
	st := Summarize(entries)
	return WeekTotals{
		From:    from,
		To:      to,
		Hours:   st.TotalHours,
		Units:   st.TotalUnits,
		Days:    st.WorkDays,
		Entries: st.EntryCount,
	}, nil
}

func (e *Engine) WeekComparison(ctx context.Context, projectID string) (WeekComparison, error) {
	now := e.now()
	cur, err := e.week(ctx, projectID, now)
	if err != nil {
		return WeekComparison{}, err
	}
	prev, err := e.week(ctx, projectID, now.AddDate(0, 0, -7))
	if err != nil {
		return WeekComparison{}, err
	}
	return WeekComparison{
		Current:    cur,
		Previous:   prev,
		HoursDelta: round1(cur.Hours - prev.Hours),
		UnitsDelta: cur.Units - prev.Units,
	}, nil
}
