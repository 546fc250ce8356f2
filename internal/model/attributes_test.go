package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_InsertionOrder(t *testing.T) {
	t.Parallel()

	a := NewAttributes()
	a.Set("Voltage - Rated", "24VDC")
	a.Set("Air Flow", "100 CFM")
	a.Set("Bearing Type", "Ball")

	assert.Equal(t, []string{"Voltage - Rated", "Air Flow", "Bearing Type"}, a.Names())
	assert.Equal(t, 3, a.Len())
}

func TestAttributes_FirstValueWins(t *testing.T) {
	t.Parallel()

	a := NewAttributes()
	a.Set("Package", "SOIC-8")
	a.Set("Package", "DIP-8")

	v, ok := a.Get("Package")
	require.True(t, ok)
	assert.Equal(t, "SOIC-8", v)
	assert.Equal(t, 1, a.Len())
}

func TestAttributes_Empty(t *testing.T) {
	t.Parallel()

	var nilAttrs *Attributes
	assert.True(t, nilAttrs.Empty())
	assert.True(t, NewAttributes().Empty())

	a := NewAttributes()
	a.Set("RPM", "3100")
	assert.False(t, a.Empty())
}

func TestAttributes_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	a := NewAttributes()
	a.Set("Size / Dimension", `Square - 119mm L x 119mm H`)
	a.Set("Noise", "46 dB(A)")

	raw, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Size / Dimension":"Square - 119mm L x 119mm H","Noise":"46 dB(A)"}`, string(raw))

	var back Attributes
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, a.Names(), back.Names())
	v, ok := back.Get("Noise")
	require.True(t, ok)
	assert.Equal(t, "46 dB(A)", v)
}

func TestLookupResult_Resolved(t *testing.T) {
	t.Parallel()

	empty := LookupResult{MPN: "4414F", Attributes: NewAttributes()}
	assert.False(t, empty.Resolved())

	a := NewAttributes()
	a.Set("Voltage - Rated", "24VDC")
	full := LookupResult{MPN: "4414F", Provider: "digikey", Attributes: a}
	assert.True(t, full.Resolved())
}
