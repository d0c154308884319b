// phase.go: deterministic phase classification for a day offset within a cycle
package cycle

// Phase identifies the cycle phase assigned to a single day offset.
type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseFertile    Phase = "fertile"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
	PhaseUnknown    Phase = "unknown"
)

// fertileWindowDays is the length of the pre-ovulation fertile band.
const fertileWindowDays = 5

// OvulationOffset returns the zero-based ovulation day for a cycle of the
// given length. Integer floor division is the single ovulation-day
// convention used throughout the engine.
func OvulationOffset(cycleLength int) int {
	return cycleLength / 2
}

// Classify maps a zero-based day offset within a cycle to a phase. Rules are
// evaluated in order and the first match wins:
//
//  1. offset outside [0, cycleLength) → unknown
//  2. offset < periodLength → menstrual
//  3. offset < ovulation-5 → follicular
//  4. offset < ovulation → fertile
//  5. offset == ovulation → ovulation
//  6. otherwise → luteal
//
// For very short cycles the follicular band can collapse entirely; rule
// order still resolves every offset unambiguously and that behavior is kept
// as-is.
func Classify(offset, cycleLength, periodLength int) Phase {
	ov := OvulationOffset(cycleLength)
	switch {
	case offset < 0 || offset >= cycleLength:
		return PhaseUnknown
	case offset < periodLength:
		return PhaseMenstrual
	case offset < ov-fertileWindowDays:
		return PhaseFollicular
	case offset < ov:
		return PhaseFertile
	case offset == ov:
		return PhaseOvulation
	default:
		return PhaseLuteal
	}
}

// String returns the phase name.
func (p Phase) String() string {
	return string(p)
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseMenstrual, PhaseFollicular, PhaseFertile, PhaseOvulation, PhaseLuteal, PhaseUnknown:
		return true
	default:
		return false
	}
}
