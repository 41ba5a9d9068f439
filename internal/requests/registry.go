package requests

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags one of the five request variants handled by the portal.
type Kind string

const (
	KindVacation            Kind = "vacationRequest"
	KindWorkCertificate     Kind = "workCertificate"
	KindMissionOrder        Kind = "missionOrder"
	KindSalaryDomiciliation Kind = "salaryDomiciliation"
	KindAnnualIncome        Kind = "annualIncome"
)

// Kinds lists every known request kind in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindVacation,
		KindWorkCertificate,
		KindMissionOrder,
		KindSalaryDomiciliation,
		KindAnnualIncome,
	}
}

// Metadata carries the presentation attributes attached to a request kind.
type Metadata struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type kindEntry struct {
	slug    string
	dataKey string
	meta    Metadata
}

var kindTable = map[Kind]kindEntry{
	KindVacation: {
		slug:    "vacation_requests",
		dataKey: "vacation_request_id",
		meta:    Metadata{Label: "Leave request", Icon: "calendar", Color: "#2563eb"},
	},
	KindWorkCertificate: {
		slug:    "work_certificates",
		dataKey: "work_certificate_id",
		meta:    Metadata{Label: "Work certificate", Icon: "file-badge", Color: "#16a34a"},
	},
	KindMissionOrder: {
		slug:    "mission_orders",
		dataKey: "mission_order_id",
		meta:    Metadata{Label: "Mission order", Icon: "plane", Color: "#9333ea"},
	},
	KindSalaryDomiciliation: {
		slug:    "salary_domiciliations",
		dataKey: "salary_domiciliation_id",
		meta:    Metadata{Label: "Salary domiciliation", Icon: "landmark", Color: "#ea580c"},
	},
	KindAnnualIncome: {
		slug:    "annual_incomes",
		dataKey: "annual_income_id",
		meta:    Metadata{Label: "Annual income statement", Icon: "receipt", Color: "#0d9488"},
	},
}

// Known reports whether the kind is one of the five registered variants.
func (k Kind) Known() bool {
	_, ok := kindTable[k]
	return ok
}

// Slug returns the backend API path segment for the kind. Unknown kinds pass
// through unchanged so newer variants can be routed without a registry change.
func (k Kind) Slug() string {
	if entry, ok := kindTable[k]; ok {
		return entry.slug
	}
	return string(k)
}

// DataKey returns the notification payload key used to correlate the kind.
func (k Kind) DataKey() string {
	if entry, ok := kindTable[k]; ok {
		return entry.dataKey
	}
	return ""
}

// Meta returns the presentation metadata for the kind.
func (k Kind) Meta() Metadata {
	return kindTable[k].meta
}

// KindFromSlug resolves an API path segment back to a kind.
func KindFromSlug(slug string) (Kind, bool) {
	slug = strings.TrimSpace(slug)
	for kind, entry := range kindTable {
		if entry.slug == slug {
			return kind, true
		}
	}
	return "", false
}

// CompositeKey identifies a request across all kinds. The numeric id alone is
// only unique within a single kind.
type CompositeKey struct {
	ID   int64 `json:"id"`
	Kind Kind  `json:"kind"`
}

// String renders the key in the wire form used by highlight targets.
func (k CompositeKey) String() string {
	return fmt.Sprintf("%d-%s", k.ID, k.Kind)
}

// ParseCompositeKey parses a "{id}-{kind}" highlight target.
func ParseCompositeKey(value string) (CompositeKey, error) {
	idPart, kindPart, found := strings.Cut(strings.TrimSpace(value), "-")
	if !found {
		return CompositeKey{}, fmt.Errorf("composite key %q: missing separator", value)
	}

	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return CompositeKey{}, fmt.Errorf("composite key %q: %w", value, err)
	}

	kind := Kind(kindPart)
	if !kind.Known() {
		return CompositeKey{}, fmt.Errorf("composite key %q: unknown kind", value)
	}

	return CompositeKey{ID: id, Kind: kind}, nil
}
