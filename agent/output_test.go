package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherAnswer struct {
	City        string  `json:"city" description:"City the forecast is for"`
	Temperature float64 `json:"temperature" description:"Temperature in celsius"`
	Summary     string  `json:"summary,omitempty"`
}

func TestOutputTypeSchema(t *testing.T) {
	ot := NewOutputType("WeatherAnswer", weatherAnswer{})

	assert.Equal(t, "WeatherAnswer", ot.Name())

	schema := ot.Schema()
	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "temperature")
	assert.Contains(t, props, "summary")

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"city", "temperature"}, required)
}

func TestOutputTypeResponseFormat(t *testing.T) {
	ot := NewOutputType("WeatherAnswer", weatherAnswer{})

	rf := ot.ResponseFormat()
	assert.Equal(t, "WeatherAnswer", rf.Name)
	assert.True(t, rf.Strict)
	assert.NotNil(t, rf.Schema)
}

func TestOutputTypeValidate(t *testing.T) {
	ot := NewOutputType("WeatherAnswer", weatherAnswer{})

	assert.NoError(t, ot.Validate(`{"city":"Berlin","temperature":21.5}`))

	// Missing required field.
	assert.Error(t, ot.Validate(`{"city":"Berlin"}`))

	// Wrong field type.
	assert.Error(t, ot.Validate(`{"city":"Berlin","temperature":"warm"}`))

	// Undeclared field.
	assert.Error(t, ot.Validate(`{"city":"Berlin","temperature":21.5,"wind":9}`))

	// Not JSON at all.
	assert.Error(t, ot.Validate(`sunny`))
}

func TestOutputTypeParse(t *testing.T) {
	ot := NewOutputType("WeatherAnswer", weatherAnswer{})

	v, err := ot.Parse(`{"city":"Berlin","temperature":21.5,"summary":"mild"}`)
	require.NoError(t, err)

	answer, ok := v.(*weatherAnswer)
	require.True(t, ok)
	assert.Equal(t, "Berlin", answer.City)
	assert.Equal(t, 21.5, answer.Temperature)
	assert.Equal(t, "mild", answer.Summary)

	_, err = ot.Parse(`{"temperature":1}`)
	require.Error(t, err)
}

func TestOutputTypePointerPrototype(t *testing.T) {
	ot := NewOutputType("WeatherAnswer", &weatherAnswer{})

	v, err := ot.Parse(`{"city":"Oslo","temperature":3}`)
	require.NoError(t, err)

	answer, ok := v.(*weatherAnswer)
	require.True(t, ok)
	assert.Equal(t, "Oslo", answer.City)
}
