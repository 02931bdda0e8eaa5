package models

// Ticket is one estimated unit of work. Durations are whole days.
type Ticket struct {
	ID        int64  `json:"id"`
	Name      string `json:"name" validate:"required"`
	BestCase  int    `json:"bestCase" validate:"gt=0"`
	WorstCase int    `json:"worstCase" validate:"gtefield=BestCase"`
	Link      string `json:"link"`
	Color     string `json:"color"`
}

// Document is everything stored for one user identifier.
type Document struct {
	Timeframe Timeframe `json:"timeframe"`
	Tickets   []Ticket  `json:"tickets" validate:"dive"`
}

// Normalize replaces a nil ticket list with an empty one so the document
// always encodes "tickets" as an array.
func (d *Document) Normalize() {
	if d.Tickets == nil {
		d.Tickets = []Ticket{}
	}
}

// Clone returns a copy that shares no ticket storage with d.
func (d Document) Clone() Document {
	out := Document{Timeframe: d.Timeframe, Tickets: make([]Ticket, len(d.Tickets))}
	copy(out.Tickets, d.Tickets)
	return out
}

// TotalBestCase sums the best case of every ticket.
func (d Document) TotalBestCase() int {
	total := 0
	for _, t := range d.Tickets {
		total += t.BestCase
	}
	return total
}

// TotalWorstCase sums the worst case of every ticket.
func (d Document) TotalWorstCase() int {
	total := 0
	for _, t := range d.Tickets {
		total += t.WorstCase
	}
	return total
}
