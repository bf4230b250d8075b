// Package template holds the typed, defaults-merged description of a card
// template: dimensions, font/photo/QR settings, language and field list.
package template

// Orientation of a card.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
)

// Language selects label tables and whether text shaping applies.
type Language string

const (
	English Language = "english"
	Urdu    Language = "urdu"
	Hindi   Language = "hindi"
	Arabic  Language = "arabic"
)

// Direction is the base text direction of a template.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// TextCase transforms field values before layout.
type TextCase string

const (
	CaseNormal     TextCase = "normal"
	CaseUpper      TextCase = "uppercase"
	CaseLower      TextCase = "lowercase"
	CaseCapitalize TextCase = "capitalize"
)

// Standard card and sheet sizes in pixels at 300 DPI.
const (
	DPI = 300

	LandscapeWidth  = 1015
	LandscapeHeight = 661

	DefaultSheetWidth  = 2480
	DefaultSheetHeight = 3508
	DefaultGridRows    = 5
	DefaultGridCols    = 2
)

// Spec is the immutable per-render template description.
type Spec struct {
	ID          string      `json:"id"`
	SchoolName  string      `json:"school_name"`
	Background  string      `json:"background"` // URL or local path of the card background
	CardWidth   int         `json:"card_width"`
	CardHeight  int         `json:"card_height"`
	SheetWidth  int         `json:"sheet_width"`
	SheetHeight int         `json:"sheet_height"`
	GridRows    int         `json:"grid_rows"`
	GridCols    int         `json:"grid_cols"`
	Orientation Orientation `json:"card_orientation"`
	Language    Language    `json:"language"`
	Direction   Direction   `json:"text_direction"`

	Font  FontSettings  `json:"font_settings"`
	Photo PhotoSettings `json:"photo_settings"`
	QR    QRSettings    `json:"qr_settings"`

	// Fields are the school-specific custom fields; standard fields are
	// added by Fields().
	CustomFields []FieldDefinition `json:"fields"`
}

// FontSettings control label/value typography and the text column.
type FontSettings struct {
	FontBold       string   `json:"font_bold"`
	FontRegular    string   `json:"font_regular"`
	LabelFontSize  int      `json:"label_font_size"`
	ValueFontSize  int      `json:"value_font_size"`
	LabelFontColor Color    `json:"label_font_color"`
	ValueFontColor Color    `json:"value_font_color"`
	LabelX         int      `json:"label_x"`
	ValueX         int      `json:"value_x"`
	StartY         int      `json:"start_y"`
	LineHeight     int      `json:"line_height"`
	TextCase       TextCase `json:"text_case"`
}

// PhotoSettings place and style the student photo.
type PhotoSettings struct {
	X                 int   `json:"photo_x"`
	Y                 int   `json:"photo_y"`
	Width             int   `json:"photo_width"`
	Height            int   `json:"photo_height"`
	RadiusTopLeft     int   `json:"photo_border_top_left"`
	RadiusTopRight    int   `json:"photo_border_top_right"`
	RadiusBottomRight int   `json:"photo_border_bottom_right"`
	RadiusBottomLeft  int   `json:"photo_border_bottom_left"`
	RemoveBackground  bool  `json:"remove_background"`
	BackgroundColor   Color `json:"bg_remove_color"`
}

// Radii returns the corner radii as [top_left, top_right, bottom_right, bottom_left].
func (p PhotoSettings) Radii() [4]int {
	return [4]int{p.RadiusTopLeft, p.RadiusTopRight, p.RadiusBottomRight, p.RadiusBottomLeft}
}

// QRSettings place and style the QR code.
type QRSettings struct {
	Enable      bool   `json:"enable_qr"`
	X           int    `json:"qr_x"`
	Y           int    `json:"qr_y"`
	Size        int    `json:"qr_size"`
	Style       string `json:"qr_style"` // square, rounded, circle
	Border      int    `json:"qr_border"`
	FillColor   Color  `json:"qr_fill_color"`
	BackColor   Color  `json:"qr_back_color"`
	DataType    string `json:"qr_data_type"` // student_id, json, url, text
	CustomText  string `json:"qr_custom_text"`
	BaseURL     string `json:"qr_base_url"`
	IncludeLogo bool   `json:"qr_include_logo"`
	LogoPath    string `json:"qr_logo_path"`
}

// FieldDefinition describes one label/value slot on the card.
type FieldDefinition struct {
	Name         string   `json:"field_name"`
	Label        string   `json:"field_label"`
	Type         string   `json:"field_type"`
	Required     bool     `json:"is_required"`
	DisplayOrder int      `json:"display_order"`
	Options      []string `json:"field_options,omitempty"`
}

// Field is a label/value pair ready for layout.
type Field struct {
	Name  string
	Label string
	Value string
	Order int
}
