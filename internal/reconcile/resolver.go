package reconcile

import (
	"encoding/json"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// ResolutionKind says how many current APNs an old APN resolved to.
type ResolutionKind int

const (
	ResolutionNone ResolutionKind = iota
	ResolutionSingle
	ResolutionMultiple
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionSingle:
		return "single"
	case ResolutionMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// Resolution is the outcome of looking an APN up in parcel history.
// IDs is empty for ResolutionNone, has one element for ResolutionSingle and
// two or more distinct elements, in history order, for ResolutionMultiple.
type Resolution struct {
	IDs  []string
	Kind ResolutionKind
}

// ID returns the successor of a single resolution, "" otherwise.
func (r Resolution) ID() string {
	if r.Kind != ResolutionSingle {
		return ""
	}
	return r.IDs[0]
}

// MarshalJSON renders {"kind": "...", "apns": [...]}.
func (r Resolution) MarshalJSON() ([]byte, error) {
	ids := r.IDs
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(struct {
		Kind string   `json:"kind"`
		APNs []string `json:"apns"`
	}{
		Kind: r.Kind.String(),
		APNs: ids,
	})
}

// Resolve finds the current APN(s) an old APN was renumbered or split into.
func Resolve(oldID string, history []models.ParcelHistory) Resolution {
	return BuildHistoryIndex(history).Resolve(oldID)
}

// Resolve finds the current APN(s) for oldID in the index.
func (h *HistoryIndex) Resolve(oldID string) Resolution {
	row, ok := h.Row(oldID)
	if !ok {
		return Resolution{Kind: ResolutionNone}
	}
	return resolveRow(row)
}

// resolveRow applies the succession rules to one history row.
// A one-to-one successor takes precedence over the split list.
func resolveRow(row models.ParcelHistory) Resolution {
	if current := strings.TrimSpace(models.StringValue(row.CurrentAPN)); current != "" {
		return Resolution{Kind: ResolutionSingle, IDs: []string{current}}
	}

	ids := splitAPNs(models.StringValue(row.CurrentAPNs))
	switch len(ids) {
	case 0:
		return Resolution{Kind: ResolutionNone}
	case 1:
		return Resolution{Kind: ResolutionSingle, IDs: ids}
	default:
		return Resolution{Kind: ResolutionMultiple, IDs: ids}
	}
}

// splitAPNs splits a comma-delimited APN list, dropping blanks and repeats.
func splitAPNs(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	parts := strings.Split(list, ",")
	ids := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
