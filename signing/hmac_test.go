package signing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base64url of a fixed 32-byte test secret
const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func TestBuildHMACSignature(t *testing.T) {
	sig, err := BuildHMACSignature(testSecret, 1700000000, "POST", "/order", `{"hello":"world"}`)
	require.NoError(t, err)
	assert.Equal(t, "ErJwyPR_pOiePjCsk0Y-QBDob8O4lav69jTejldb-ZA=", sig)
}

func TestBuildHMACSignature_EmptyBody(t *testing.T) {
	sig, err := BuildHMACSignature(testSecret, 1700000000, "GET", "/orders", "")
	require.NoError(t, err)
	assert.Equal(t, "d_8rYNiskB9DSmPVGBEqPIK9veia9oWolAp_uuLjkXA=", sig)
}

func TestBuildHMACSignature_BodyIsPartOfTheMessage(t *testing.T) {
	withBody, err := BuildHMACSignature(testSecret, 1700000000, "POST", "/order", `{"hello":"world"}`)
	require.NoError(t, err)
	without, err := BuildHMACSignature(testSecret, 1700000000, "POST", "/order", "")
	require.NoError(t, err)
	assert.NotEqual(t, withBody, without)
}

func TestBuildHMACSignature_BadSecret(t *testing.T) {
	_, err := BuildHMACSignature("not base64!", 1700000000, "GET", "/orders", "")
	assert.Error(t, err)
}
