package workflow

import (
	"sort"
	"sync"
)

// Board is a view's read-through copy of the complaints it shows. It is only
// ever written with server responses, never with guesses:
//   - a refresh started before a newer refresh is dropped when it lands late;
//   - per complaint, a response is applied only if no later-issued request
//     for that complaint has already been applied;
//   - once the view is closed nothing is applied at all.
type Board struct {
	mu      sync.Mutex
	items   map[int64]Complaint
	order   []int64
	clock   uint64
	loadGen uint64
	loadAt  uint64
	applied map[int64]uint64
	closed  bool
}

// Ticket identifies an issued request.
type Ticket struct {
	ID  int64
	seq uint64
}

// LoadTicket identifies an issued refresh.
type LoadTicket struct {
	gen uint64
	at  uint64
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{
		items:   make(map[int64]Complaint),
		applied: make(map[int64]uint64),
	}
}

// BeginLoad marks the start of a refresh; only the newest refresh may land.
func (b *Board) BeginLoad() LoadTicket {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock++
	b.loadGen++
	return LoadTicket{gen: b.loadGen, at: b.clock}
}

// FinishLoad replaces the board with list unless the refresh is stale or the
// board is closed. Complaints changed by a request issued after the refresh
// started keep their newer local copy.
func (b *Board) FinishLoad(t LoadTicket, list []Complaint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || t.gen != b.loadGen {
		return false
	}

	items := make(map[int64]Complaint, len(list))
	order := make([]int64, 0, len(list))
	for _, c := range list {
		if _, dup := items[c.ID]; dup {
			continue
		}
		if seq, ok := b.applied[c.ID]; ok && seq > t.at {
			if local, ok := b.items[c.ID]; ok {
				c = local
			}
		}
		items[c.ID] = c
		order = append(order, c.ID)
	}
	b.items = items
	b.order = order
	return true
}

// Issue records that a request about complaint id is being sent.
func (b *Board) Issue(id int64) Ticket {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock++
	return Ticket{ID: id, seq: b.clock}
}

// Apply stores the server's copy of a complaint for ticket t. It reports
// whether the copy was applied.
func (b *Board) Apply(t Ticket, c Complaint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	if last, ok := b.applied[t.ID]; ok && last > t.seq {
		return false
	}
	b.applied[t.ID] = t.seq
	if c.ID != t.ID {
		b.applied[c.ID] = t.seq
	}
	if _, exists := b.items[c.ID]; !exists {
		b.order = append([]int64{c.ID}, b.order...)
	}
	b.items[c.ID] = c
	return true
}

// Put stores a newly created complaint at the top of the board.
func (b *Board) Put(c Complaint) bool {
	return b.Apply(b.Issue(c.ID), c)
}

// Close detaches the board from its view; late responses are discarded.
func (b *Board) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

// Closed reports whether Close was called.
func (b *Board) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Get returns the local copy of a complaint.
func (b *Board) Get(id int64) (Complaint, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.items[id]
	return c, ok
}

// Items returns the complaints in board order.
func (b *Board) Items() []Complaint {
	return b.Filter(nil)
}

// Filter returns the complaints matching keep, in board order.
func (b *Board) Filter(keep func(Complaint) bool) []Complaint {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Complaint, 0, len(b.order))
	for _, id := range b.order {
		c := b.items[id]
		if keep == nil || keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Len is the number of complaints on the board.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.order)
}

// Counts tallies complaints per status.
func (b *Board) Counts() map[Status]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, c := range b.items {
		out[c.Status]++
	}
	return out
}

// ByUrgency sorts complaints by descending score, newest first on ties.
func ByUrgency(list []Complaint) []Complaint {
	out := append([]Complaint(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := scoreOf(out[i]), scoreOf(out[j])
		if si != sj {
			return si > sj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func scoreOf(c Complaint) int {
	if c.UrgencyScore == nil {
		return 0
	}
	return *c.UrgencyScore
}
