package timeline

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/timelinetracker/backend/internal/models"
)

func TestTimelineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("add keeps valid tickets verbatim and rejects the rest", prop.ForAll(
		func(name string, best, worst int) bool {
			m := newTestModel(nil)
			tk, err := m.AddTicket(TicketInput{Name: name, BestCase: best, WorstCase: worst})
			valid := name != "" && best > 0 && worst >= best
			got := m.Tickets()
			if !valid {
				return err != nil && len(got) == 0
			}
			return err == nil && len(got) == 1 &&
				got[0].ID == tk.ID && got[0].Name == name &&
				got[0].BestCase == best && got[0].WorstCase == worst
		},
		gen.OneConstOf("", "ticket", "login flow"),
		gen.IntRange(-3, 20),
		gen.IntRange(-3, 20),
	))

	properties.Property("remaining is timeframe minus the sums", prop.ForAll(
		func(timeframe int, bests []int, spreads []int) bool {
			m := newTestModel(nil)
			m.SetTimeframe(strconv.Itoa(timeframe))
			sumBest, sumWorst := 0, 0
			for i := 0; i < len(bests) && i < len(spreads); i++ {
				worst := bests[i] + spreads[i]
				if _, err := m.AddTicket(TicketInput{Name: "t", BestCase: bests[i], WorstCase: worst}); err != nil {
					return false
				}
				sumBest += bests[i]
				sumWorst += worst
			}
			r := m.Remaining()
			return r.BestCase == timeframe-sumBest && r.WorstCase == timeframe-sumWorst
		},
		gen.IntRange(-10, 200),
		gen.SliceOf(gen.IntRange(1, 30)),
		gen.SliceOf(gen.IntRange(0, 30)),
	))

	properties.Property("chart segments never exceed the row", prop.ForAll(
		func(timeframe int, bests []int) bool {
			doc := models.Document{Timeframe: models.TimeframeFromDays(timeframe)}
			for i, b := range bests {
				doc.Tickets = append(doc.Tickets, models.Ticket{ID: int64(i), BestCase: b, WorstCase: b * 2})
			}
			scale := timeframe
			if w := doc.TotalWorstCase(); w > scale {
				scale = w
			}
			total := 0.0
			for _, s := range SegmentsFor(doc) {
				if s.Solid < 0 || s.Light < 0 {
					return false
				}
				total += s.Width()
			}
			if scale <= 0 {
				return total == 0
			}
			want := float64(doc.TotalWorstCase()) / float64(scale)
			return total <= 1+1e-9 && total-want < 1e-9 && want-total < 1e-9
		},
		gen.IntRange(0, 100),
		gen.SliceOf(gen.IntRange(1, 20)),
	))

	properties.TestingRun(t)
}
