package doc

// Legacy fixed-ratio length units used by the surrounding document format.
// Everything inside the layout core works in CSS pixels (96 dpi); these
// helpers convert at the system boundary.

const (
	// PxPerPt converts typographic points (72 per inch) to pixels.
	PxPerPt = 96.0 / 72.0

	// TwipsPerPt is the twentieths-of-a-point ratio.
	TwipsPerPt = 20.0

	// EMUPerInch is English Metric Units per inch.
	EMUPerInch = 914400.0

	pxPerInch = 96.0
)

// PtToPx converts points to pixels.
func PtToPx(pt float64) float64 { return pt * PxPerPt }

// PxToPt converts pixels to points.
func PxToPt(px float64) float64 { return px / PxPerPt }

// TwipsToPx converts twips (1/20 point) to pixels.
func TwipsToPx(twips float64) float64 { return twips / TwipsPerPt * PxPerPt }

// PxToTwips converts pixels to twips.
func PxToTwips(px float64) float64 { return px / PxPerPt * TwipsPerPt }

// EMUToPx converts English Metric Units (1/914400 inch) to pixels.
func EMUToPx(emu float64) float64 { return emu / EMUPerInch * pxPerInch }

// PxToEMU converts pixels to English Metric Units.
func PxToEMU(px float64) float64 { return px / pxPerInch * EMUPerInch }

// HalfPointsToPx converts half-points (used for font sizes) to pixels.
func HalfPointsToPx(hp float64) float64 { return PtToPx(hp / 2) }
