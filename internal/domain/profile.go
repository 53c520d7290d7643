package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// WindObservation is one measured or modelled wind speed at a known height above ground.
type WindObservation struct {
	Height    float64   `json:"height_m"`
	Speed     float64   `json:"speed_ms"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ProfileLaw selects the vertical wind profile model.
type ProfileLaw string

const (
	LawPower ProfileLaw = "power"
	LawLog   ProfileLaw = "log"
)

// ParseProfileLaw accepts "power", "log" and the POWER_LAW / LOG_LAW spellings.
func ParseProfileLaw(s string) (ProfileLaw, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "power", "power_law":
		return LawPower, nil
	case "log", "log_law":
		return LawLog, nil
	default:
		return "", invalidInput("unknown wind profile law %q", s)
	}
}

type roughnessKind int

const (
	roughnessUnset roughnessKind = iota
	roughnessLength
	roughnessHellmann
)

// RoughnessProfile describes terrain friction as either a roughness length z0 (log law)
// or a Hellmann exponent alpha (power law). The zero value is invalid; build one with
// RoughnessLength or HellmannExponent.
type RoughnessProfile struct {
	kind  roughnessKind
	value float64
}

// RoughnessLength returns a log-law profile with roughness length z0 in metres.
func RoughnessLength(z0 float64) RoughnessProfile {
	return RoughnessProfile{kind: roughnessLength, value: z0}
}

// HellmannExponent returns a power-law profile with the given shear exponent.
func HellmannExponent(alpha float64) RoughnessProfile {
	return RoughnessProfile{kind: roughnessHellmann, value: alpha}
}

func (r RoughnessProfile) String() string {
	switch r.kind {
	case roughnessLength:
		return fmt.Sprintf("z0=%gm", r.value)
	case roughnessHellmann:
		return fmt.Sprintf("alpha=%g", r.value)
	default:
		return "unset"
	}
}

// Extrapolate converts the observed speed to the speed at targetHeight under the
// chosen law. Equal heights return the observed speed unchanged.
func Extrapolate(obs WindObservation, targetHeight float64, profile RoughnessProfile, law ProfileLaw) (float64, error) {
	if math.IsNaN(obs.Speed) || math.IsInf(obs.Speed, 0) || obs.Speed < 0 {
		return 0, invalidInput("wind speed must be a non-negative number, got %g", obs.Speed)
	}
	factor, err := ProfileScaleFactor(obs.Height, targetHeight, profile, law)
	if err != nil {
		return 0, err
	}
	if obs.Height == targetHeight {
		return obs.Speed, nil
	}

	v := obs.Speed * factor
	if math.IsNaN(v) || v < 0 {
		return 0, invalidInput("extrapolated speed %g from %g m/s at %g m is not physical", v, obs.Speed, obs.Height)
	}
	return v, nil
}

// ProfileScaleFactor returns the ratio v(targetHeight)/v(refHeight) for the given
// profile. Both laws are linear in the reference speed, so the factor also lifts a
// whole distribution between heights.
func ProfileScaleFactor(refHeight, targetHeight float64, profile RoughnessProfile, law ProfileLaw) (float64, error) {
	if !(refHeight > 0) || math.IsInf(refHeight, 0) {
		return 0, invalidInput("reference height must be positive, got %g", refHeight)
	}
	if !(targetHeight > 0) || math.IsInf(targetHeight, 0) {
		return 0, invalidInput("target height must be positive, got %g", targetHeight)
	}

	var factor float64
	switch law {
	case LawPower:
		if profile.kind != roughnessHellmann {
			return 0, invalidInput("power law requires a Hellmann exponent, got %s", profile)
		}
		alpha := profile.value
		if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
			return 0, invalidInput("Hellmann exponent %g outside [0, 1]", alpha)
		}
		factor = math.Pow(targetHeight/refHeight, alpha)
	case LawLog:
		if profile.kind != roughnessLength {
			return 0, invalidInput("log law requires a roughness length, got %s", profile)
		}
		z0 := profile.value
		if !(z0 > 0) || math.IsInf(z0, 0) {
			return 0, invalidInput("roughness length must be positive, got %g", z0)
		}
		if refHeight <= z0 || targetHeight <= z0 {
			return 0, invalidInput("heights %g m and %g m must exceed roughness length %g m", refHeight, targetHeight, z0)
		}
		factor = math.Log(targetHeight/z0) / math.Log(refHeight/z0)
	default:
		return 0, invalidInput("unknown wind profile law %q", law)
	}

	if refHeight == targetHeight {
		return 1, nil
	}
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor < 0 {
		return 0, invalidInput("profile scale factor %g is not physical", factor)
	}
	return factor, nil
}
