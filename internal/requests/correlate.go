package requests

import (
	"encoding/json"
	"strconv"
)

// correlationOrder fixes the priority in which payload keys are probed.
// The first present key wins; payloads are not expected to carry two keys.
var correlationOrder = []Kind{
	KindWorkCertificate,
	KindVacation,
	KindMissionOrder,
	KindSalaryDomiciliation,
	KindAnnualIncome,
}

// Correlate extracts the composite key referenced by a notification `data`
// payload. Malformed JSON and payloads without a known key both yield nil:
// an uncorrelated notification is not an error.
func Correlate(data string) *CompositeKey {
	if data == "" {
		return nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil
	}

	for _, kind := range correlationOrder {
		raw, ok := payload[kind.DataKey()]
		if !ok {
			continue
		}
		id, ok := decodeID(raw)
		if !ok {
			continue
		}
		return &CompositeKey{ID: id, Kind: kind}
	}

	return nil
}

// decodeID accepts both numeric and numeric-string id encodings, matching
// what the notification emitters have historically produced.
func decodeID(raw json.RawMessage) (int64, bool) {
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber, true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if id, err := strconv.ParseInt(asString, 10, 64); err == nil {
			return id, true
		}
	}

	return 0, false
}
