package docx

// EMU is the document model's native length unit (English Metric Units).
// 914400 EMUs per inch, 360000 per centimeter.
type EMU int64

const (
	EMUPerInch       EMU = 914400
	EMUPerCentimeter EMU = 360000
)

// Centimeters converts a centimeter measurement to EMUs.
func Centimeters(cm float64) EMU {
	return EMU(cm * float64(EMUPerCentimeter))
}

// Centimeters converts the measurement back to centimeters.
func (e EMU) Centimeters() float64 {
	return float64(e) / float64(EMUPerCentimeter)
}

// IsSet reports whether the measurement carries an explicit value.
// Zero means the document never declared one.
func (e EMU) IsSet() bool {
	return e != 0
}
