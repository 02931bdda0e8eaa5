package timeline

import "github.com/timelinetracker/backend/internal/models"

// Remaining is the number of days left once every ticket is done. Negative
// values mean the tickets do not fit in the timeframe.
type Remaining struct {
	BestCase  int `json:"bestCase"`
	WorstCase int `json:"worstCase"`
}

// Segment is the bar chart geometry of one ticket, as fractions of the
// full row. Solid covers the best case, Light the spread up to the worst
// case.
type Segment struct {
	TicketID int64   `json:"ticketId"`
	Color    string  `json:"color"`
	Solid    float64 `json:"solid"`
	Light    float64 `json:"light"`
}

// Width is the share of the row the ticket takes in the worst case.
func (s Segment) Width() float64 {
	return s.Solid + s.Light
}

func RemainingFor(doc models.Document) Remaining {
	days := doc.Timeframe.Days()
	return Remaining{
		BestCase:  days - doc.TotalBestCase(),
		WorstCase: days - doc.TotalWorstCase(),
	}
}

// SegmentsFor lays out the tickets against max(timeframe, total worst
// case), so the segments together never exceed the row.
func SegmentsFor(doc models.Document) []Segment {
	scale := doc.Timeframe.Days()
	if total := doc.TotalWorstCase(); total > scale {
		scale = total
	}
	out := make([]Segment, 0, len(doc.Tickets))
	for _, t := range doc.Tickets {
		seg := Segment{TicketID: t.ID, Color: t.Color}
		if scale > 0 && t.WorstCase > 0 {
			best := t.BestCase
			if best < 0 {
				best = 0
			}
			if best > t.WorstCase {
				best = t.WorstCase
			}
			seg.Solid = float64(best) / float64(scale)
			seg.Light = float64(t.WorstCase-best) / float64(scale)
		}
		out = append(out, seg)
	}
	return out
}
