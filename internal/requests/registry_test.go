package requests

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugMapping(t *testing.T) {
	cases := map[Kind]string{
		KindVacation:            "vacation_requests",
		KindWorkCertificate:     "work_certificates",
		KindMissionOrder:        "mission_orders",
		KindSalaryDomiciliation: "salary_domiciliations",
		KindAnnualIncome:        "annual_incomes",
	}

	for kind, slug := range cases {
		require.Equal(t, slug, kind.Slug())

		back, ok := KindFromSlug(slug)
		require.True(t, ok)
		require.Equal(t, kind, back)
	}
}

func TestUnknownKindSlugPassesThrough(t *testing.T) {
	require.Equal(t, "equipmentRequest", Kind("equipmentRequest").Slug())

	_, ok := KindFromSlug("equipment_requests")
	require.False(t, ok)
}

func TestKindMetadataPresentForAllKinds(t *testing.T) {
	for _, kind := range Kinds() {
		meta := kind.Meta()
		require.NotEmpty(t, meta.Label, "kind %s", kind)
		require.NotEmpty(t, meta.Icon, "kind %s", kind)
		require.NotEmpty(t, meta.Color, "kind %s", kind)
		require.NotEmpty(t, kind.DataKey(), "kind %s", kind)
	}
}

func TestCompositeKeyRoundTrip(t *testing.T) {
	key := CompositeKey{ID: 9, Kind: KindMissionOrder}
	require.Equal(t, "9-missionOrder", key.String())

	parsed, err := ParseCompositeKey("9-missionOrder")
	require.NoError(t, err)
	require.Equal(t, key, parsed)
}

func TestParseCompositeKeyRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "9", "x-vacationRequest", "9-equipmentRequest"} {
		_, err := ParseCompositeKey(input)
		require.Error(t, err, "input %q", input)
	}
}

func TestCompositeKeysDoNotCollideAcrossKinds(t *testing.T) {
	a := CompositeKey{ID: 5, Kind: KindVacation}
	b := CompositeKey{ID: 5, Kind: KindWorkCertificate}
	require.NotEqual(t, a, b)

	seen := map[CompositeKey]string{a: "a", b: "b"}
	require.Len(t, seen, 2)
}
