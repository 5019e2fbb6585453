package models

// SiteList is the in-memory site collection, ordered by insertion.
// It is owned by a single goroutine and does no locking of its own.
type SiteList struct {
	records []SiteRecord
}

// NewSiteList wraps already loaded records. Later duplicates of an id are dropped.
func NewSiteList(records []SiteRecord) *SiteList {
	list := &SiteList{records: make([]SiteRecord, 0, len(records))}
	for _, rec := range records {
		if list.Find(rec.ID) != nil {
			continue
		}
		list.records = append(list.records, rec)
	}
	return list
}

// Len returns the number of records.
func (l *SiteList) Len() int {
	return len(l.records)
}

// Records returns a copy of the records in insertion order.
func (l *SiteList) Records() []SiteRecord {
	out := make([]SiteRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Find returns a pointer into the collection, or nil. The pointer is only
// valid until the next Upsert or Remove.
func (l *SiteList) Find(id string) *SiteRecord {
	for i := range l.records {
		if l.records[i].ID == id {
			return &l.records[i]
		}
	}
	return nil
}

// Upsert replaces the configuration of an existing record, keeping its state,
// or appends a new record with a zero state. It reports whether a record was added.
func (l *SiteList) Upsert(cfg SiteConfig) bool {
	if existing := l.Find(cfg.ID); existing != nil {
		existing.SiteConfig = cfg
		return false
	}
	l.records = append(l.records, SiteRecord{SiteConfig: cfg})
	return true
}

// Remove deletes every record with the given id and reports how many were removed.
func (l *SiteList) Remove(id string) int {
	kept := l.records[:0]
	removed := 0
	for _, rec := range l.records {
		if rec.ID == id {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	for i := len(kept); i < len(l.records); i++ {
		l.records[i] = SiteRecord{}
	}
	l.records = kept
	return removed
}
