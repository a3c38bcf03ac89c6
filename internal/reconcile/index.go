package reconcile

import (
	"sort"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// ParcelIndex maps an APN to its parcel master row.
type ParcelIndex map[string]models.Parcel

// BuildIndex indexes parcels by APN. When an APN appears more than once the
// last row wins. Rows with a blank APN cannot be joined and are skipped.
func BuildIndex(parcels []models.Parcel) ParcelIndex {
	idx := make(ParcelIndex, len(parcels))
	for _, p := range parcels {
		apn := strings.TrimSpace(p.APN)
		if apn == "" {
			continue
		}
		idx[apn] = p
	}
	return idx
}

// Lookup returns a copy of the parcel for apn.
func (idx ParcelIndex) Lookup(apn string) (*models.Parcel, bool) {
	p, ok := idx[strings.TrimSpace(apn)]
	if !ok {
		return nil, false
	}
	return &p, true
}

// HistoryIndex holds one succession row per inactive APN.
type HistoryIndex struct {
	rows       map[string]models.ParcelHistory
	total      int
	duplicates int
}

// BuildHistoryIndex indexes parcel history by old APN.
//
// When several rows share an old APN the row with the latest LastUpdated wins;
// a row without LastUpdated loses to any dated row, and equal timestamps keep
// the earliest row in input order. Every row beyond the first for an APN is
// counted in Duplicates.
func BuildHistoryIndex(history []models.ParcelHistory) *HistoryIndex {
	ordered := make([]models.ParcelHistory, len(history))
	copy(ordered, history)

	// Stable sort, newest first, so the first row seen per APN is the winner.
	sort.SliceStable(ordered, func(i, j int) bool {
		return newer(ordered[i], ordered[j])
	})

	h := &HistoryIndex{
		rows:  make(map[string]models.ParcelHistory, len(ordered)),
		total: len(history),
	}
	for _, row := range ordered {
		apn := strings.TrimSpace(row.APN)
		if apn == "" {
			continue
		}
		if _, seen := h.rows[apn]; seen {
			h.duplicates++
			continue
		}
		h.rows[apn] = row
	}
	return h
}

// newer reports whether a was updated strictly after b.
func newer(a, b models.ParcelHistory) bool {
	switch {
	case a.LastUpdated == nil:
		return false
	case b.LastUpdated == nil:
		return true
	default:
		return a.LastUpdated.After(*b.LastUpdated)
	}
}

// Len returns the number of distinct old APNs.
func (h *HistoryIndex) Len() int {
	if h == nil {
		return 0
	}
	return len(h.rows)
}

// Total returns the number of history rows indexed, duplicates included.
func (h *HistoryIndex) Total() int {
	if h == nil {
		return 0
	}
	return h.total
}

// Duplicates returns how many rows were shadowed by another row for the same APN.
func (h *HistoryIndex) Duplicates() int {
	if h == nil {
		return 0
	}
	return h.duplicates
}

// Row returns the winning history row for an old APN.
func (h *HistoryIndex) Row(apn string) (models.ParcelHistory, bool) {
	if h == nil {
		return models.ParcelHistory{}, false
	}
	row, ok := h.rows[strings.TrimSpace(apn)]
	return row, ok
}
