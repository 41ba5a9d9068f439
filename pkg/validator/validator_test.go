package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type replyPayload struct {
	Reply string `json:"reply" validate:"required,min=1"`
	Kind  string `json:"kind" validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(replyPayload{Reply: "done", Kind: "vacationRequest"}))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(replyPayload{})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)
	require.Equal(t, "reply", failures[0].Field)
	require.Contains(t, err.Error(), "reply failed on required")
}
