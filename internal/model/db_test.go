package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductAmount(t *testing.T) {
	p := Product{ID: "p1", Price: "154.5 NEAR"}

	amount, err := p.Amount()
	require.NoError(t, err)
	assert.Equal(t, "154.5", amount.String())
	assert.Equal(t, "NEAR", p.Currency())
}

func TestProductAmountInvalid(t *testing.T) {
	_, err := Product{ID: "bad", Price: "free NEAR"}.Amount()
	require.Error(t, err)

	_, err = Product{ID: "empty", Price: "  "}.Amount()
	require.Error(t, err)
}

func TestProductUntaggedCurrency(t *testing.T) {
	assert.Equal(t, "", Product{Price: "12"}.Currency())
}

func TestProductValidate(t *testing.T) {
	valid := Product{ID: "p1", Price: "0.24 NEAR", PrivacyLevel: PrivacyVerified}
	require.NoError(t, valid.Validate())

	noID := valid
	noID.ID = ""
	require.Error(t, noID.Validate())

	badLevel := valid
	badLevel.PrivacyLevel = "Low"
	require.Error(t, badLevel.Validate())
}

func TestReceiptShortHash(t *testing.T) {
	r := Receipt{Hash: "0x7a2b9c4d5e6ff39e"}
	assert.Equal(t, "0x7a2...f39e", r.ShortHash())

	assert.Equal(t, "0xabc", Receipt{Hash: "0xabc"}.ShortHash())
}
