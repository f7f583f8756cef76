package domain

// Ticket is a transferable ownership token for one event admission.
type Ticket struct {
	ID       uint64
	EventID  string
	Owner    string
	Approved *string
}

// IsApproved reports whether addr is the ticket's approved delegate.
func (t *Ticket) IsApproved(addr string) bool {
	return t.Approved != nil && *t.Approved == addr
}
