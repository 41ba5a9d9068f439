package requests

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrelateExtractsEachKind(t *testing.T) {
	cases := map[string]CompositeKey{
		`{"work_certificate_id":3}`:      {ID: 3, Kind: KindWorkCertificate},
		`{"vacation_request_id":5}`:      {ID: 5, Kind: KindVacation},
		`{"mission_order_id":9}`:         {ID: 9, Kind: KindMissionOrder},
		`{"salary_domiciliation_id":12}`: {ID: 12, Kind: KindSalaryDomiciliation},
		`{"annual_income_id":7}`:         {ID: 7, Kind: KindAnnualIncome},
	}

	for payload, want := range cases {
		got := Correlate(payload)
		require.NotNil(t, got, "payload %s", payload)
		require.Equal(t, want, *got)
	}
}

func TestCorrelatePriorityOrderFirstMatchWins(t *testing.T) {
	payload := `{"annual_income_id":7,"work_certificate_id":3}`
	got := Correlate(payload)
	require.NotNil(t, got)
	require.Equal(t, CompositeKey{ID: 3, Kind: KindWorkCertificate}, *got)
}

func TestCorrelateAcceptsStringIDs(t *testing.T) {
	got := Correlate(`{"mission_order_id":"9"}`)
	require.NotNil(t, got)
	require.Equal(t, CompositeKey{ID: 9, Kind: KindMissionOrder}, *got)
}

func TestCorrelateMalformedJSONYieldsNoCorrelation(t *testing.T) {
	require.Nil(t, Correlate(`{bad json`))
	require.Nil(t, Correlate(""))
	require.Nil(t, Correlate(`{"unrelated":1}`))
	require.Nil(t, Correlate(`{"mission_order_id":"not-a-number"}`))
}
