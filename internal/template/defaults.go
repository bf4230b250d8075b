package template

const (
	DefaultFontRegular = "arial.ttf"
	DefaultFontBold    = "arialbd.ttf"

	DefaultQRBaseURL = "https://example.com/verify/"
)

// DefaultFont returns the font settings for a fresh template of the given
// orientation. Portrait cards use a tighter text column.
func DefaultFont(o Orientation) FontSettings {
	fs := FontSettings{
		FontBold:       DefaultFontBold,
		FontRegular:    DefaultFontRegular,
		LabelFontSize:  40,
		ValueFontSize:  36,
		LabelFontColor: Black,
		ValueFontColor: Black,
		LabelX:         50,
		ValueX:         280,
		StartY:         275,
		LineHeight:     50,
		TextCase:       CaseNormal,
	}
	if o == Portrait {
		fs.LabelFontSize = 32
		fs.ValueFontSize = 28
		fs.LabelX = 40
		fs.ValueX = 200
		fs.StartY = 120
		fs.LineHeight = 45
	}
	return fs
}

// DefaultPhoto returns the photo box for a fresh template.
func DefaultPhoto(o Orientation) PhotoSettings {
	ps := PhotoSettings{
		X:               725,
		Y:               200,
		Width:           260,
		Height:          313,
		BackgroundColor: White,
	}
	if o == Portrait {
		ps.X = 100
		ps.Y = 400
		ps.Width = 216
		ps.Height = 180
	}
	return ps
}

// DefaultQR returns QR settings with the code disabled.
func DefaultQR() QRSettings {
	return QRSettings{
		Enable:    false,
		X:         50,
		Y:         50,
		Size:      120,
		Style:     "square",
		Border:    2,
		FillColor: Black,
		BackColor: White,
		DataType:  "student_id",
		BaseURL:   DefaultQRBaseURL,
	}
}

// Default returns a complete template for the orientation with no
// background and no custom fields.
func Default(o Orientation) *Spec {
	w, h := LandscapeWidth, LandscapeHeight
	if o == Portrait {
		w, h = h, w
	} else {
		o = Landscape
	}
	return &Spec{
		CardWidth:   w,
		CardHeight:  h,
		SheetWidth:  DefaultSheetWidth,
		SheetHeight: DefaultSheetHeight,
		GridRows:    DefaultGridRows,
		GridCols:    DefaultGridCols,
		Orientation: o,
		Language:    English,
		Direction:   LTR,
		Font:        DefaultFont(o),
		Photo:       DefaultPhoto(o),
		QR:          DefaultQR(),
	}
}
