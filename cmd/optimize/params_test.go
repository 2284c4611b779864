package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/gridfire/agent"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/telemetry"
)

func TestNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	cfg := cloneConfig(base)
	if err := pv.ApplyToConfig(cfg, pv.DefaultVector()); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived != base.Derived {
		t.Error("applying default parameters changed the resolved config")
	}
}

func TestApplyLeavesBaseUntouched(t *testing.T) {
	base, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	before := base.Hostiles["demon"].Health

	pv := NewParamVector()
	x := pv.DefaultVector()
	for i, spec := range pv.Specs {
		x[i] = spec.Max + 1 // clamped to Max
	}
	cfg := cloneConfig(base)
	if err := pv.ApplyToConfig(cfg, x); err != nil {
		t.Fatal(err)
	}

	if got := base.Hostiles["demon"].Health; got != before {
		t.Errorf("base demon health changed to %d", got)
	}
	if got := cfg.Hostiles["demon"].Health; got != 120 {
		t.Errorf("clone demon health = %d, want 120", got)
	}
	if got := cfg.Sim.PainDuration; got != 0.8 {
		t.Errorf("pain duration = %v, want 0.8", got)
	}
}

func TestComputeFitness(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Duration: 60, Health: 0.5}}

	tests := []struct {
		name string
		res  agent.Result
		want float64
	}{
		{"on target", agent.Result{Time: 60, PlayerHealth: 50, Cleared: true}, 0},
		{"died", agent.Result{Time: 60, PlayerHealth: 0, PlayerDead: true}, 4 + deathPenalty},
		{"stalemate", agent.Result{Time: 60, PlayerHealth: 50}, stalematePenalty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fe.computeFitness(tt.res, 100, nil)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccuracyPoolsWindows(t *testing.T) {
	windows := []telemetry.WindowStats{
		{Attacks: 10, Accuracy: 0.5},
		{Attacks: 30, Accuracy: 1.0},
		{},
	}
	if got := accuracy(windows); math.Abs(got-35.0/40.0) > 1e-9 {
		t.Errorf("accuracy = %v, want 0.875", got)
	}
}

func TestCV(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single window", []float64{12}, 0},
		{"no damage", []float64{0, 0, 0}, 0},
		{"steady", []float64{10, 10, 10, 10}, 0},
		{"bursty", []float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0/7) / 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cv(tt.values); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cv(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestPacingTermPenalizesBursts(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Duration: 60, Health: 0.5}}
	res := agent.Result{Time: 60, PlayerHealth: 50, Cleared: true}

	steady := []telemetry.WindowStats{{DamageTaken: 10}, {DamageTaken: 10}}
	bursty := []telemetry.WindowStats{{DamageTaken: 0}, {DamageTaken: 20}}
	if got := fe.computeFitness(res, 100, steady); math.Abs(got) > 1e-9 {
		t.Errorf("steady fitness = %v, want 0", got)
	}
	// mean 10, sample std sqrt(200), so cv = sqrt(2).
	want := pacingWeight * math.Sqrt2
	if got := fe.computeFitness(res, 100, bursty); math.Abs(got-want) > 1e-9 {
		t.Errorf("bursty fitness = %v, want %v", got, want)
	}
}
