package catalog

import (
	"fmt"
	"time"

	"github.com/iudanet/masterdata/internal/models"
)

// The journal displays local Polish time; the warehouse team reads
// "dziś 14:32", not UTC.
var warsaw = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Warsaw")
	if err != nil {
		return time.Local
	}
	return loc
}()

func nowWarsaw() time.Time { return time.Now().In(warsaw) }

// GroupChanges renders audit entries (newest first) into per-day
// groups for the journal panel: today and yesterday get their named
// groups first, older days follow as DD-MM in encounter order.
func GroupChanges(entries []models.ChangeEntry, now time.Time) []models.ChangeGroup {
	today := now.In(warsaw).Format("2006-01-02")
	yesterday := now.In(warsaw).AddDate(0, 0, -1).Format("2006-01-02")

	groups := make(map[string][]string)
	var olderOrder []string

	for _, e := range entries {
		ts := e.CreatedAt.In(warsaw)
		line := fmt.Sprintf("%s, rekord %d, pole %s, wartość: %s. %s %s",
			actorOrUnknown(e.Actor), e.ProductID, e.Field, e.NewValue,
			ts.Format("02-01"), ts.Format("15:04"))

		label := ts.Format("02-01")
		switch ts.Format("2006-01-02") {
		case today:
			label = "dziś"
		case yesterday:
			label = "wczoraj"
		}
		if _, ok := groups[label]; !ok && label != "dziś" && label != "wczoraj" {
			olderOrder = append(olderOrder, label)
		}
		groups[label] = append(groups[label], line)
	}

	var out []models.ChangeGroup
	for _, label := range []string{"dziś", "wczoraj"} {
		if lines, ok := groups[label]; ok {
			out = append(out, models.ChangeGroup{DateLabel: label, Entries: lines})
		}
	}
	for _, label := range olderOrder {
		out = append(out, models.ChangeGroup{DateLabel: label, Entries: groups[label]})
	}
	return out
}

func actorOrUnknown(actor string) string {
	if actor == "" {
		return "?"
	}
	return actor
}
