package document

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pelletier/go-toml/v2"
)

// Color is a "#RRGGBB" hex color.
type Color string

// RGB returns the color components.
func (c Color) RGB() (int, int, int, error) {
	s := strings.TrimPrefix(string(c), "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid color %q", string(c))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid color %q: %w", string(c), err)
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), nil
}

// Box is a rectangle in points with a top-left origin.
type Box struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	W float64 `toml:"w"`
	H float64 `toml:"h"`
}

// Within reports whether b lies inside a page of the given size.
func (b Box) Within(width, height float64) bool {
	return b.X >= 0 && b.Y >= 0 && b.X+b.W <= width && b.Y+b.H <= height
}

// Overlaps reports whether b and o share any interior area.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.W && o.X < b.X+b.W && b.Y < o.Y+o.H && o.Y < b.Y+b.H
}

// Logo places an image at a fixed corner. Height follows the image aspect ratio.
type Logo struct {
	X     float64 `toml:"x"`
	Y     float64 `toml:"y"`
	Width float64 `toml:"width"`
}

// Title is the centered page heading.
type Title struct {
	Text   string  `toml:"text"`
	Y      float64 `toml:"y"`
	Height float64 `toml:"height"`
	Size   float64 `toml:"size"`
	Color  Color   `toml:"color"`
}

// Divider is the horizontal rule beneath the title, inset from both page edges.
type Divider struct {
	Y     float64 `toml:"y"`
	Inset float64 `toml:"inset"`
}

// Field is a shaded label cell followed by a bordered value cell.
type Field struct {
	Key        string  `toml:"key"`
	Label      string  `toml:"label"`
	X          float64 `toml:"x"`
	Y          float64 `toml:"y"`
	LabelWidth float64 `toml:"label_width"`
	ValueWidth float64 `toml:"value_width"`
	Height     float64 `toml:"height"`
}

// TextBlock is a bordered box with a heading and word-wrapped free text.
type TextBlock struct {
	Key         string  `toml:"key"`
	Heading     string  `toml:"heading"`
	Box         Box     `toml:"box"`
	HeadingSize float64 `toml:"heading_size"`
	TextSize    float64 `toml:"text_size"`
	LineHeight  float64 `toml:"line_height"`
	Padding     float64 `toml:"padding"`
}

// PhotoArea is the shaded region holding the photo grid.
type PhotoArea struct {
	Box          Box     `toml:"box"`
	Heading      string  `toml:"heading"`
	HeadingSize  float64 `toml:"heading_size"`
	HeadingColor Color   `toml:"heading_color"`
	Fill         Color   `toml:"fill"`
}

// PhotoGrid lays photo slots out row by row in equally sized cells.
type PhotoGrid struct {
	X          float64  `toml:"x"`
	Y          float64  `toml:"y"`
	Columns    int      `toml:"columns"`
	CellWidth  float64  `toml:"cell_width"`
	CellHeight float64  `toml:"cell_height"`
	Gap        float64  `toml:"gap"`
	Slots      []string `toml:"slots"`
}

// Boxes returns the cell for each slot in reading order.
func (g PhotoGrid) Boxes() map[string]Box {
	boxes := make(map[string]Box, len(g.Slots))
	cols := max(g.Columns, 1)
	for i, slot := range g.Slots {
		col, row := i%cols, i/cols
		boxes[slot] = Box{
			X: g.X + float64(col)*(g.CellWidth+g.Gap),
			Y: g.Y + float64(row)*(g.CellHeight+g.Gap),
			W: g.CellWidth,
			H: g.CellHeight,
		}
	}
	return boxes
}

// Layout is the declarative template for the single-page report.
type Layout struct {
	Page        string    `toml:"page"`
	LabelFill   Color     `toml:"label_fill"`
	FontSize    float64   `toml:"font_size"`
	LeftLogo    Logo      `toml:"left_logo"`
	RightLogo   Logo      `toml:"right_logo"`
	Title       Title     `toml:"title"`
	Divider     Divider   `toml:"divider"`
	Fields      []Field   `toml:"fields"`
	Description TextBlock `toml:"description"`
	PhotoArea   PhotoArea `toml:"photo_area"`
	Photos      PhotoGrid `toml:"photos"`
}

const (
	a4Width     = 595.28
	margin      = 30.0
	labelWidth  = 80.0
	valueWidth  = 180.0
	fieldHeight = 20.0
	rightColumn = 310.0
)

// DefaultLayout returns the A4 warranty claim layout.
func DefaultLayout() Layout {
	field := func(key, label string, x, y float64) Field {
		return Field{
			Key:        key,
			Label:      label,
			X:          x,
			Y:          y,
			LabelWidth: labelWidth,
			ValueWidth: valueWidth,
			Height:     fieldHeight,
		}
	}

	area := Box{X: margin, Y: 220, W: a4Width - 2*margin, H: 580}
	cellWidth := (area.W - 30) / 2

	return Layout{
		Page:      "A4",
		LabelFill: "#EFEFEF",
		FontSize:  10,
		LeftLogo:  Logo{X: margin, Y: 25, Width: 80},
		RightLogo: Logo{X: a4Width - 110, Y: 25, Width: 80},
		Title: Title{
			Text:   "RECLAMACION DE GARANTÍAS",
			Y:      28,
			Height: 22,
			Size:   18,
			Color:  "#FF0000",
		},
		Divider: Divider{Y: 55, Inset: 20},
		Fields: []Field{
			field("fecha", "FECHA", margin, 80),
			field("cliente", "CLIENTE", margin, 100),
			field("telefono", "TELÉFONO", margin, 120),
			field("agente", "AGENTE", rightColumn, 80),
			field("contacto", "CONTACTO", rightColumn, 100),
			field("factura", "FACTURA", rightColumn, 120),
			field("modelo", "MODELO", margin, 150),
			field("referencia", "REF", margin, 170),
			field("talla", "TALLA", margin, 190),
		},
		Description: TextBlock{
			Key:         "motivoReclamacion",
			Heading:     "DESCRIPCIÓN DEFECTO",
			Box:         Box{X: rightColumn, Y: 150, W: 255, H: 60},
			HeadingSize: 9,
			TextSize:    10,
			LineHeight:  11,
			Padding:     5,
		},
		PhotoArea: PhotoArea{
			Box:          area,
			Heading:      "INSERTAR FOTOGRAFÍAS",
			HeadingSize:  14,
			HeadingColor: "#555555",
			Fill:         "#EFEFEF",
		},
		Photos: PhotoGrid{
			X:          area.X + 10,
			Y:          area.Y + 50,
			Columns:    2,
			CellWidth:  cellWidth,
			CellHeight: cellWidth * 0.75,
			Gap:        10,
			Slots:      []string{"fotoParDelantero", "fotoParTrasero", "fotoDetalle", "fotoEtiqueta"},
		},
	}
}

// LoadLayout reads a TOML layout file over the default layout.
// Tables present in the file replace the corresponding defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()

	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	if err := toml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// PageSize returns the page width and height in points.
func (l Layout) PageSize() (float64, float64, error) {
	pdf := fpdf.New("P", "pt", l.Page, "")
	if pdf.Err() {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidLayout, pdf.Error())
	}
	w, h := pdf.GetPageSize()
	return w, h, nil
}

// Validate checks colors, field keys, that every box fits the page, and
// that no two photo cells overlap.
func (l Layout) Validate() error {
	width, height, err := l.PageSize()
	if err != nil {
		return err
	}

	for _, c := range []Color{l.LabelFill, l.Title.Color, l.PhotoArea.HeadingColor, l.PhotoArea.Fill} {
		if _, _, _, err := c.RGB(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
		}
	}

	for i, f := range l.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: field %d has no key", ErrInvalidLayout, i)
		}
	}

	if l.Photos.CellWidth <= 0 || l.Photos.CellHeight <= 0 {
		return fmt.Errorf("%w: photo cells must have positive size", ErrInvalidLayout)
	}

	boxes := l.Photos.Boxes()
	if len(boxes) != len(l.Photos.Slots) {
		return fmt.Errorf("%w: duplicate photo slot", ErrInvalidLayout)
	}

	placed := map[string]Box{
		"left logo":   {X: l.LeftLogo.X, Y: l.LeftLogo.Y, W: l.LeftLogo.Width},
		"right logo":  {X: l.RightLogo.X, Y: l.RightLogo.Y, W: l.RightLogo.Width},
		"title":       {Y: l.Title.Y, W: width, H: l.Title.Height},
		"description": l.Description.Box,
		"photo area":  l.PhotoArea.Box,
	}
	for _, f := range l.Fields {
		placed["field "+f.Key] = Box{X: f.X, Y: f.Y, W: f.LabelWidth + f.ValueWidth, H: f.Height}
	}
	for slot, b := range boxes {
		placed["photo "+slot] = b
	}
	names := make([]string, 0, len(placed))
	for name := range placed {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !placed[name].Within(width, height) {
			return fmt.Errorf("%w: %s lies outside the %gx%g page", ErrInvalidLayout, name, width, height)
		}
	}
	if l.Divider.Y < 0 || l.Divider.Y > height || 2*l.Divider.Inset > width {
		return fmt.Errorf("%w: divider lies outside the page", ErrInvalidLayout)
	}
	for i, a := range l.Photos.Slots {
		for _, b := range l.Photos.Slots[i+1:] {
			if boxes[a].Overlaps(boxes[b]) {
				return fmt.Errorf("%w: photo slots %s and %s overlap", ErrInvalidLayout, a, b)
			}
		}
	}
	return nil
}
