package player

import "math"

const (
	logVolumeGrowthRate  = 6.908
	logVolumeScaleFactor = 1000.0
	unityGain            = 1.0

	// TargetLUFS is the loudness level normalization aims for.
	TargetLUFS = -14.0

	maxNormalizationDB = 12.0
)

// LogVolume maps the raw volume slider in [0, 1] to an electrical amplitude
// on an exponential curve, which the ear perceives as a linear fade. The
// endpoints map exactly: 0 stays silent and 1 stays unity. Below 0.1 an
// extra linear correction removes the audible jump near silence.
func LogVolume(volume float64) float64 {
	amplitude := volume
	if amplitude > 0 && amplitude < unityGain {
		amplitude = math.Exp(logVolumeGrowthRate*volume) / logVolumeScaleFactor
		if volume < 0.1 {
			amplitude *= volume * 10
		}
	}
	return amplitude
}

// NormalizationGain returns the linear gain that brings a track measured at
// lufs to the -14 LUFS target, clamped to +/-12 dB. It is unity when
// normalization is disabled or the track has no loudness measurement.
func NormalizationGain(enabled bool, lufs *float64) float64 {
	if !enabled || lufs == nil {
		return unityGain
	}
	gainDB := TargetLUFS - *lufs
	if gainDB > maxNormalizationDB {
		gainDB = maxNormalizationDB
	}
	if gainDB < -maxNormalizationDB {
		gainDB = -maxNormalizationDB
	}
	return math.Pow(10, gainDB/20)
}
