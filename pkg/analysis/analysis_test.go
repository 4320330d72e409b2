package analysis_test

import (
	"testing"

	"github.com/aretw0/patchbay/pkg/analysis"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(name, kind string, inputs ...string) *protocol.Object {
	o := &protocol.Object{Name: name, Kind: kind}
	if len(inputs) > 0 {
		o.Input = make(map[string]string)
		for i := 0; i+1 < len(inputs); i += 2 {
			o.Input[inputs[i]] = inputs[i+1]
		}
	}
	return o
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestAnalyze_Chain(t *testing.T) {
	patch := []*protocol.Object{
		obj(domain.EngineName, domain.EngineKind, "root", "mul1"),
		obj("mul1", "mul", "a", "sin1", "b", "value2"),
		obj("sin1", "sin", "pitch", "value1"),
		obj("value1", "value"),
		obj("value2", "value"),
		obj("noise1", "noise"),
	}

	r := analysis.Analyze(patch)
	assert.True(t, r.Acyclic())
	require.Len(t, r.Order, 6)
	for _, o := range patch {
		for _, from := range o.Input {
			assert.Less(t, indexOf(r.Order, from), indexOf(r.Order, o.Name), "%s before %s", from, o.Name)
		}
	}
	assert.Equal(t, []string{"noise1"}, r.Idle)
	assert.Empty(t, r.Dangling)
}

func TestAnalyze_Feedback(t *testing.T) {
	patch := []*protocol.Object{
		obj(domain.EngineName, domain.EngineKind, "root", "sum1"),
		obj("sum1", "sum", "a", "value1", "b", "delay1"),
		obj("delay1", "delay", "in", "sum1"),
		obj("value1", "value"),
		obj("clip1", "clip", "in", "clip1"),
	}

	r := analysis.Analyze(patch)
	assert.False(t, r.Acyclic())
	assert.Empty(t, r.Order)
	assert.Equal(t, [][]string{{"clip1"}, {"delay1", "sum1"}}, r.Cycles)
	assert.Equal(t, []string{"clip1"}, r.Idle)
}

func TestAnalyze_Dangling(t *testing.T) {
	patch := []*protocol.Object{
		obj(domain.EngineName, domain.EngineKind, "root", "ghost"),
		obj("value1", "value"),
	}

	r := analysis.Analyze(patch)
	assert.Equal(t, []domain.Connection{{From: "ghost", To: domain.EngineName, Input: "root"}}, r.Dangling)
	assert.Equal(t, []string{"value1"}, r.Idle)
	assert.ElementsMatch(t, []string{domain.EngineName, "value1"}, r.Order)
}

func TestAnalyze_NoEngine(t *testing.T) {
	r := analysis.Analyze([]*protocol.Object{obj("value1", "value"), obj("clip1", "clip", "in", "value1")})
	assert.Equal(t, []string{"clip1", "value1"}, r.Idle)
	assert.Equal(t, []string{"value1", "clip1"}, r.Order)
}
