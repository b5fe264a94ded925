package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-autoscaler-agent/config"
	"go-autoscaler-agent/dto"
)

func testPolicy() config.Policy {
	return config.Policy{
		LatencyThresholdMS: 300,
		CPUThreshold:       0.7,
		RPSThreshold:       200,
		ScaleOutFactor:     0.2,
		ScaleInFactor:      0.15,
		MinReplicas:        2,
		MaxReplicas:        50,
	}
}

func Test_Decide_ZeroMetricsNeverScaleOut(t *testing.T) {
	p := testPolicy()
	for _, current := range []int32{0, 1, 2, 5, 50, 100} {
		d := Decide(dto.MetricsSnapshot{}, current, p)
		assert.NotEqual(t, dto.ActionScaleOut, d.Action, "current=%d", current)
		if d.Action == dto.ActionScaleIn {
			// A fleet below min (including 0) clamps up to min; anything
			// else shrinks toward it.
			assert.GreaterOrEqual(t, d.TargetReplicas, p.MinReplicas)
			assert.LessOrEqual(t, d.TargetReplicas, p.MaxReplicas)
		}
	}
}

func Test_Decide_LatencyBreachIsMonotonic(t *testing.T) {
	p := testPolicy()
	breaches := []dto.MetricsSnapshot{
		{LatencyMS: 301},
		{LatencyMS: 500, CPUFraction: 0.1, RPS: 10},
		{LatencyMS: 10000},
	}
	for _, m := range breaches {
		for _, current := range []int32{2, 3, 10, 49, 50} {
			d := Decide(m, current, p)
			assert.GreaterOrEqual(t, d.TargetReplicas, current, "metrics=%+v current=%d", m, current)
		}
	}
}

func Test_Decide_DeadZone(t *testing.T) {
	p := testPolicy()
	// Strictly between 0.69*threshold and threshold on every dimension the
	// scale-in band looks at, with nothing breached.
	cases := []dto.MetricsSnapshot{
		{LatencyMS: 250, CPUFraction: 0.6, RPS: 150},
		{LatencyMS: 208, CPUFraction: 0.1, RPS: 0},  // latency alone inside the band
		{LatencyMS: 10, CPUFraction: 0.5, RPS: 100}, // cpu alone inside the band
		{LatencyMS: 299.9, CPUFraction: 0.699, RPS: 199.9},
	}
	for _, m := range cases {
		d := Decide(m, 5, p)
		assert.Equal(t, dto.ActionNoChange, d.Action, "metrics=%+v", m)
		assert.Equal(t, int32(5), d.TargetReplicas)
	}
}

func Test_Decide_AntiFlapping(t *testing.T) {
	p := testPolicy()

	// A sample just under the scale-out threshold after a scale-out must
	// not trigger a reversal.
	m := dto.MetricsSnapshot{LatencyMS: 295, CPUFraction: 0.5, RPS: 100}
	first := Decide(m, 6, p)
	assert.Equal(t, dto.ActionNoChange, first.Action)
	second := Decide(m, first.TargetReplicas, p)
	assert.Equal(t, dto.ActionNoChange, second.Action)

	// At the max bound a persistent breach converges to NoChange instead of
	// oscillating.
	breach := dto.MetricsSnapshot{LatencyMS: 500}
	d := Decide(breach, p.MaxReplicas, p)
	assert.Equal(t, dto.ActionNoChange, d.Action)
	assert.Equal(t, p.MaxReplicas, d.TargetReplicas)

	// Same at the min bound for a persistent quiet period.
	quiet := dto.MetricsSnapshot{LatencyMS: 10, CPUFraction: 0.05}
	d = Decide(quiet, p.MinReplicas, p)
	assert.Equal(t, dto.ActionNoChange, d.Action)
	assert.Equal(t, p.MinReplicas, d.TargetReplicas)
}

func Test_Decide_Clamping(t *testing.T) {
	p := testPolicy()

	t.Run("extreme scale-out factor", func(t *testing.T) {
		p := p
		p.ScaleOutFactor = 1e12
		d := Decide(dto.MetricsSnapshot{LatencyMS: 500}, 10, p)
		assert.Equal(t, dto.ActionScaleOut, d.Action)
		assert.Equal(t, p.MaxReplicas, d.TargetReplicas)
	})

	t.Run("scale-in factor near one", func(t *testing.T) {
		p := p
		p.ScaleInFactor = 0.99
		d := Decide(dto.MetricsSnapshot{}, 10, p)
		assert.Equal(t, dto.ActionScaleIn, d.Action)
		assert.Equal(t, p.MinReplicas, d.TargetReplicas)
	})

	t.Run("scale out from zero lands on min", func(t *testing.T) {
		d := Decide(dto.MetricsSnapshot{LatencyMS: 500}, 0, p)
		assert.Equal(t, dto.ActionScaleOut, d.Action)
		assert.Equal(t, p.MinReplicas, d.TargetReplicas)
	})

	t.Run("result always within bounds", func(t *testing.T) {
		snapshots := []dto.MetricsSnapshot{
			{}, {LatencyMS: 1e9}, {CPUFraction: 100}, {RPS: 1e9},
			{LatencyMS: 250, CPUFraction: 0.6, RPS: 150},
		}
		for _, m := range snapshots {
			for _, current := range []int32{0, 1, 25, 50, 500} {
				d := Decide(m, current, p)
				if d.Action != dto.ActionNoChange {
					assert.GreaterOrEqual(t, d.TargetReplicas, p.MinReplicas)
					assert.LessOrEqual(t, d.TargetReplicas, p.MaxReplicas)
				}
			}
		}
	})
}

func Test_Decide_Rounding(t *testing.T) {
	p := testPolicy()

	// ceil(3 * 1.2) = 4
	d := Decide(dto.MetricsSnapshot{LatencyMS: 500}, 3, p)
	assert.Equal(t, dto.ActionScaleOut, d.Action)
	assert.Equal(t, int32(4), d.TargetReplicas)

	// floor(10 * 0.85) = 8
	d = Decide(dto.MetricsSnapshot{LatencyMS: 100, CPUFraction: 0.3}, 10, p)
	assert.Equal(t, dto.ActionScaleIn, d.Action)
	assert.Equal(t, int32(8), d.TargetReplicas)

	// floor(3 * 0.85) = 2, already at min
	d = Decide(dto.MetricsSnapshot{LatencyMS: 100, CPUFraction: 0.3}, 3, p)
	assert.Equal(t, dto.ActionScaleIn, d.Action)
	assert.Equal(t, int32(2), d.TargetReplicas)
}

func Test_Decide_ZeroFactorsDegradeToNoChange(t *testing.T) {
	p := testPolicy()
	p.ScaleOutFactor = 0
	p.ScaleInFactor = 0

	d := Decide(dto.MetricsSnapshot{LatencyMS: 500}, 5, p)
	assert.Equal(t, dto.ActionNoChange, d.Action)

	d = Decide(dto.MetricsSnapshot{LatencyMS: 10, CPUFraction: 0.05}, 5, p)
	assert.Equal(t, dto.ActionNoChange, d.Action)
}

func Test_Decide_RPSOnlyScalesOut(t *testing.T) {
	p := testPolicy()

	// RPS breach triggers scale-out.
	d := Decide(dto.MetricsSnapshot{LatencyMS: 10, CPUFraction: 0.1, RPS: 250}, 5, p)
	assert.Equal(t, dto.ActionScaleOut, d.Action)

	// Low RPS does not participate in the scale-in condition: quiet latency
	// and CPU shrink the fleet whatever the request rate below threshold.
	d = Decide(dto.MetricsSnapshot{LatencyMS: 10, CPUFraction: 0.1, RPS: 199}, 10, p)
	assert.Equal(t, dto.ActionScaleIn, d.Action)

	// And low RPS alone must not shrink a fleet whose latency is elevated
	// inside the dead zone.
	d = Decide(dto.MetricsSnapshot{LatencyMS: 250, CPUFraction: 0.1, RPS: 1}, 10, p)
	assert.Equal(t, dto.ActionNoChange, d.Action)
}

func Test_Decide_EndToEndScenarios(t *testing.T) {
	p := testPolicy()

	// latency 500 (threshold 300), cur 5 -> ceil(5*1.2) = 6
	d := Decide(dto.MetricsSnapshot{LatencyMS: 500, CPUFraction: 0.5, RPS: 100}, 5, p)
	assert.Equal(t, dto.ActionScaleOut, d.Action)
	assert.Equal(t, int32(6), d.TargetReplicas)

	// latency 100 < 207, cpu 0.3 < 0.483, cur 10 -> floor(10*0.85) = 8
	d = Decide(dto.MetricsSnapshot{LatencyMS: 100, CPUFraction: 0.3, RPS: 50}, 10, p)
	assert.Equal(t, dto.ActionScaleIn, d.Action)
	assert.Equal(t, int32(8), d.TargetReplicas)

	// everything in the dead zone -> NoChange
	d = Decide(dto.MetricsSnapshot{LatencyMS: 250, CPUFraction: 0.6, RPS: 150}, 5, p)
	assert.Equal(t, dto.ActionNoChange, d.Action)
}

func Test_Clamp(t *testing.T) {
	assert.Equal(t, int32(2), Clamp(0, 2, 50))
	assert.Equal(t, int32(2), Clamp(-5, 2, 50))
	assert.Equal(t, int32(50), Clamp(80, 2, 50))
	assert.Equal(t, int32(7), Clamp(7, 2, 50))
	assert.Equal(t, int32(2), Clamp(2, 2, 50))
	assert.Equal(t, int32(50), Clamp(50, 2, 50))
}
