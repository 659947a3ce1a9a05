package load

import (
	"fmt"
	"math"
)

// ViolationKind names a code limit a computed value exceeded.
type ViolationKind string

const (
	OverBreaker       ViolationKind = "over_breaker"
	OverConductor     ViolationKind = "over_conductor"
	OverVoltageDrop   ViolationKind = "over_voltage_drop"
	OverPanelCapacity ViolationKind = "over_panel_capacity"
)

// Violation annotates a LoadResult. Violations are warnings surfaced to
// the schedule view; they never block an edit.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Message string        `json:"message"`
}

// Input describes one load for evaluation.
type Input struct {
	VA          float64
	Voltage     float64
	Phase       int     // 1 or 3
	PowerFactor float64 // three-phase only; 0 means 1.0
	Continuous  bool    // runs 3+ hours
	LengthM     float64 // routed conductor run, metres
}

// Result is the derived electrical parameters for a load or aggregate.
type Result struct {
	VA             float64     `json:"va"`
	Amps           float64     `json:"amps"`
	Breaker        float64     `json:"breaker"`
	Poles          int         `json:"poles"`
	Conductor      string      `json:"conductor"`
	VoltageDrop    float64     `json:"voltage_drop"`     // volts
	VoltageDropPct float64     `json:"voltage_drop_pct"` // percent of system voltage
	Violations     []Violation `json:"violations,omitempty"`
}

// Violated reports whether any code limit was exceeded.
func (r Result) Violated() bool { return len(r.Violations) > 0 }

// Amps computes the load current. Continuous loads carry the table's
// continuous factor (PEC: 125%) so conductors and protection are sized
// for sustained heating.
func (t *Table) Amps(in Input) float64 {
	va := in.VA
	if in.Continuous {
		va *= t.ContinuousFactor
	}
	if in.Voltage <= 0 {
		return 0
	}
	if in.Phase == 3 {
		pf := in.PowerFactor
		if pf <= 0 || pf > 1 {
			pf = 1.0
		}
		return va / (in.Voltage * math.Sqrt(3) * pf)
	}
	return va / in.Voltage
}

// Evaluate derives the full branch-circuit result for one load: current,
// breaker, conductor, and voltage drop over the routed length. A value
// beyond a code limit annotates the result, never errors.
func (t *Table) Evaluate(in Input) Result {
	amps := t.Amps(in)

	// Branch protection must cover 125% of a non-continuous load's
	// current; continuous loads already carry the factor in amps.
	required := amps
	if !in.Continuous {
		required = amps * t.ContinuousFactor
	}

	r := Result{
		VA:    in.VA,
		Amps:  round2(amps),
		Poles: polesFor(in.Phase),
	}

	breaker, ok := t.BreakerFor(required)
	r.Breaker = breaker
	if !ok {
		r.Violations = append(r.Violations, Violation{
			Kind:    OverBreaker,
			Message: fmt.Sprintf("required ampacity %.1fA exceeds largest standard breaker %.0fA", required, breaker),
		})
	}

	cond, ok := t.ConductorFor(required)
	r.Conductor = cond.Size
	if !ok {
		r.Violations = append(r.Violations, Violation{
			Kind:    OverConductor,
			Message: fmt.Sprintf("required ampacity %.1fA exceeds largest conductor %s", required, cond.Size),
		})
	}

	// Voltage drop uses the actual load current, not the sizing factor.
	rawAmps := in.VA / math.Max(in.Voltage, 1)
	if in.Phase == 3 {
		rawAmps = t.Amps(Input{VA: in.VA, Voltage: in.Voltage, Phase: 3, PowerFactor: in.PowerFactor})
	}
	vd, pct := t.VoltageDrop(rawAmps, in.LengthM, cond.ResistanceOhmKm, in.Voltage, in.Phase)
	r.VoltageDrop = round2(vd)
	r.VoltageDropPct = round2(pct)
	if pct > t.BranchVDropLimitPct {
		r.Violations = append(r.Violations, Violation{
			Kind:    OverVoltageDrop,
			Message: fmt.Sprintf("voltage drop %.2f%% exceeds %.1f%% branch limit", pct, t.BranchVDropLimitPct),
		})
	}
	return r
}

// VoltageDrop computes the drop along a run and its percentage of system
// voltage. Single phase: VD = 2·L·I·R/1000. Three phase: √3 replaces the
// factor 2. L in metres, R in ohms per kilometre.
func (t *Table) VoltageDrop(amps, lengthM, resistanceOhmKm, voltage float64, phase int) (volts, pct float64) {
	factor := 2.0
	if phase == 3 {
		factor = math.Sqrt(3)
	}
	volts = factor * lengthM * amps * resistanceOhmKm / 1000
	if voltage > 0 {
		pct = volts / voltage * 100
	}
	return volts, pct
}

// ShortCircuit returns the available symmetrical fault current in kA at a
// transformer's secondary, from its kVA rating and percent impedance.
// Used to pick breaker interrupting capacity (KAIC).
func ShortCircuit(kvaTransformer, impedancePct, voltage float64, threePhase bool) float64 {
	if impedancePct <= 0 || voltage <= 0 {
		return 0
	}
	fla := kvaTransformer * 1000 / voltage
	if threePhase {
		fla = kvaTransformer * 1000 / (voltage * math.Sqrt(3))
	}
	isc := fla / (impedancePct / 100)
	return round2(isc / 1000)
}

func polesFor(phase int) int {
	if phase == 3 {
		return 3
	}
	return 1
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
