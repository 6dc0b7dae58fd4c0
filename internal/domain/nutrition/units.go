package nutrition

// DropsPerMl is the macro-drip set factor: 20 drops make 1 ml.
const DropsPerMl = 20.0

// PumpVolume is the 24h volume delivered by an infusion pump.
func PumpVolume(rateMlPerHour, durationHours float64) float64 {
	return nonNegative(rateMlPerHour) * nonNegative(durationHours)
}

// GravityVolume is the 24h volume delivered by a gravity drip.
func GravityVolume(dropsPerMinute, durationHours float64) float64 {
	return (nonNegative(dropsPerMinute) / DropsPerMl) * 60 * nonNegative(durationHours)
}

// BolusVolume is the volume of repeated discrete administrations.
func BolusVolume(amountPerAdministration float64, administrations int) float64 {
	if administrations <= 0 {
		return 0
	}
	return nonNegative(amountPerAdministration) * float64(administrations)
}

// IsContinuous reports whether a line is volume-by-rate rather than by administration.
func IsContinuous(system SystemType, mode InfusionMode) bool {
	return system == SystemClosed && (mode == ModePump || mode == ModeGravity)
}

// AdministeredVolume is the daily volume of a formula line for the given system and mode.
func AdministeredVolume(system SystemType, mode InfusionMode, line FormulaLine) float64 {
	if IsContinuous(system, mode) {
		if mode == ModeGravity {
			return GravityVolume(line.DropsPerMinute, line.DurationHours)
		}
		return PumpVolume(line.RateMlPerHour, line.DurationHours)
	}
	return BolusVolume(line.VolumePerAdministrationMl, line.Schedule.Count())
}
