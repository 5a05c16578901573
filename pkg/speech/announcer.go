package speech

// PendingEntry is the announcement for a structural region that has been
// entered but not yet spoken.
type PendingEntry struct {
	Field        *Field
	Announcement Sequence
	Flushed      bool

	// HasRichContent forces the entry to be emitted even with an empty
	// announcement.
	HasRichContent bool
}

// Announcer owns the queue of pending entries for one query and decides
// when each of them is spoken.
type Announcer struct {
	deferred bool
	policy   Policy
	rich     RichContentRenderer
	pos      Position

	pending []*PendingEntry

	// inClickable is set while inside a clickable field whose clickable
	// state was already announced.
	inClickable bool
}

// NewAnnouncer returns an announcer. With deferred false every entry is
// flushed by the caller as soon as it is created.
func NewAnnouncer(deferred bool, policy Policy, rich RichContentRenderer, pos Position) *Announcer {
	return &Announcer{
		deferred: deferred,
		policy:   policy,
		rich:     rich,
		pos:      pos,
	}
}

// Deferred reports whether entries wait for content.
func (a *Announcer) Deferred() bool {
	return a.deferred
}

// Create queues the entry announcement for field. It returns nil, queueing
// nothing, when there is nothing to say and no rich content.
func (a *Announcer) Create(field *Field, announcement Sequence) *PendingEntry {
	rich := a.policy.isRichContent(field)
	if len(announcement) == 0 && !rich {
		return nil
	}
	entry := &PendingEntry{
		Field:          field,
		Announcement:   announcement,
		HasRichContent: rich,
	}
	a.pending = append(a.pending, entry)
	return entry
}

// FlushAll marks every unflushed entry flushed and returns their renderings,
// outermost first.
func (a *Announcer) FlushAll() []Sequence {
	var units []Sequence
	for _, entry := range a.pending {
		if entry.Flushed {
			continue
		}
		entry.Flushed = true
		if len(entry.Announcement) == 0 && !entry.HasRichContent {
			continue
		}
		if unit := a.render(entry); len(unit) > 0 {
			units = append(units, unit)
		}
	}
	return units
}

// ResolveOnExit settles the innermost pending entry when its field is
// exited. An entry that was never flushed is merged with the exit
// announcement into a single unit; otherwise exit is returned alone.
func (a *Announcer) ResolveOnExit(field *Field, exit Sequence) Sequence {
	if len(a.pending) == 0 || a.pending[len(a.pending)-1].Field != field {
		return exit
	}
	entry := a.pending[len(a.pending)-1]
	a.pending = a.pending[:len(a.pending)-1]
	if entry.Flushed {
		return exit
	}
	entry.Flushed = true
	merged := a.render(entry)
	return append(merged, exit...)
}

// Unflushed returns the number of entries still waiting for content.
func (a *Announcer) Unflushed() int {
	n := 0
	for _, entry := range a.pending {
		if !entry.Flushed {
			n++
		}
	}
	return n
}

// EnterClickable records entering field and reports whether its clickable
// state should be announced: only the outermost of nested clickables is.
func (a *Announcer) EnterClickable(field *Field, report bool) bool {
	if a.inClickable || !report || !field.States.Has(StateClickable) {
		return false
	}
	a.inClickable = true
	p := field.Presentation
	return p == PresentationNone || p == PresentationLayout
}

// ResetClickable ends the current clickable run. Text and field exits do so.
func (a *Announcer) ResetClickable() {
	a.inClickable = false
}

func (a *Announcer) render(entry *PendingEntry) Sequence {
	unit := append(Sequence(nil), entry.Announcement...)
	if entry.HasRichContent && a.rich != nil {
		a.rich.AppendRichContent(&unit, a.pos, entry.Field)
	}
	return unit
}
