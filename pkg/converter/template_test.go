package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantops/assetmodeler/pkg/apperrors"
)

func TestParseSourceTemplate(t *testing.T) {
	template, err := ParseSourceTemplate("ns=1;s=[default]Pumps/{pumpId}/Speed")
	require.NoError(t, err)

	assert.Equal(t, "ns=1", template.Provider)
	assert.Equal(t, "s=[default]Pumps/{pumpId}/Speed", template.RawPath)
	assert.Equal(t, []string{"pumpId"}, template.Placeholders)
}

func TestParseSourceTemplate_MultiplePlaceholders(t *testing.T) {
	template, err := ParseSourceTemplate("ns=1;s=[default]{area}/{line}/Motor/{motorId}/Current")
	require.NoError(t, err)

	assert.Equal(t, []string{"area", "line", "motorId"}, template.Placeholders)
}

func TestParseSourceTemplate_NoPathSegment(t *testing.T) {
	_, err := ParseSourceTemplate("ns=1")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedTemplate)
}

func TestSourceTemplate_Resolve(t *testing.T) {
	template, err := ParseSourceTemplate("ns=1;s=[default]Pumps/{pumpId}/Speed")
	require.NoError(t, err)

	path, err := template.Resolve(map[string]string{"pumpId": "P1"}, "/Tag Providers/default")
	require.NoError(t, err)
	assert.Equal(t, "/Tag Providers/default/Pumps/P1/Speed", path)
}

func TestSourceTemplate_Resolve_MissingParameter(t *testing.T) {
	template, err := ParseSourceTemplate("ns=1;s=[default]Pumps/{pumpId}/Speed")
	require.NoError(t, err)

	_, err = template.Resolve(map[string]string{"motorId": "M1"}, "/Tag Providers/default")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingParameter)
}

func TestSourceTemplate_Resolve_NoSourcePrefix(t *testing.T) {
	// Paths without a bracketed source prefix pass through unchanged.
	template, err := ParseSourceTemplate("ns=1;nsu=urn:site:plc/{unit}/Temp")
	require.NoError(t, err)

	path, err := template.Resolve(map[string]string{"unit": "U7"}, "/Tag Providers/default")
	require.NoError(t, err)
	assert.Equal(t, "nsu=urn:site:plc/U7/Temp", path)
}

func TestSourceTemplate_Resolve_NoPlaceholders(t *testing.T) {
	template, err := ParseSourceTemplate("ns=1;s=[default]Plant/Ambient/Temperature")
	require.NoError(t, err)

	path, err := template.Resolve(nil, "/Tag Providers/default")
	require.NoError(t, err)
	assert.Equal(t, "/Tag Providers/default/Plant/Ambient/Temperature", path)
}
