// Package document composes the single-page warranty report PDF from a
// declarative Layout. Output is deterministic for identical input.
package document

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"mime"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/image/draw"
)

func init() {
	// pdfcpu would otherwise create a configuration directory under the
	// user config dir, which serverless filesystems do not allow.
	api.DisableConfigDir()
}

// epoch is written as both creation and modification date.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

const font = "Helvetica"

// photoResolution caps embedded photos at this many pixels per point of cell width.
const photoResolution = 2

// Image is an uploaded photo with its declared MIME type.
type Image struct {
	Data        []byte
	ContentType string
}

// Input is everything the composer draws. Missing fields render empty,
// missing photos and logos leave blank space.
type Input struct {
	Fields    map[string]string
	Photos    map[string]Image
	LeftLogo  []byte
	RightLogo []byte
}

// Composer renders Inputs with a fixed Layout.
type Composer struct {
	layout Layout
	conf   *model.Configuration
	logger *slog.Logger
}

// New validates layout and returns a Composer bound to it.
func New(layout Layout, logger *slog.Logger) (*Composer, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Composer{
		layout: layout,
		conf:   conf,
		logger: logger.With("system", "document"),
	}, nil
}

// Layout returns the composer's layout.
func (c *Composer) Layout() Layout {
	return c.layout
}

// Compose renders in and returns the finished PDF. Either the whole document
// is produced or an error is returned.
func (c *Composer) Compose(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "pt", c.layout.Page, "")
	pdf.SetCreationDate(epoch)
	pdf.SetModificationDate(epoch)
	pdf.SetCatalogSort(true)
	pdf.SetTitle("Reclamación de garantía", true)
	pdf.SetCreator("warranty", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(5)
	pdf.AddPage()

	r := &renderer{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		layout: &c.layout,
		logger: c.logger,
		widths: make(map[int][sha256.Size]byte),
	}

	r.logo("logo-left", c.layout.LeftLogo, in.LeftLogo)
	r.logo("logo-right", c.layout.RightLogo, in.RightLogo)
	r.title()
	r.divider()
	for _, f := range c.layout.Fields {
		r.field(f, in.Fields[f.Key])
	}
	r.description(in.Fields[c.layout.Description.Key])
	r.photoArea()
	if err := r.photos(in.Photos); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := c.verify(buf.Bytes()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *Composer) verify(data []byte) error {
	pages, err := api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return fmt.Errorf("%w: verify: %v", ErrRender, err)
	}
	if pages != 1 {
		return fmt.Errorf("%w: expected 1 page, got %d", ErrRender, pages)
	}
	return nil
}

type renderer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	layout *Layout
	logger *slog.Logger
	widths map[int][sha256.Size]byte
}

func (r *renderer) textColor(c Color) {
	red, green, blue, _ := c.RGB()
	r.pdf.SetTextColor(red, green, blue)
}

func (r *renderer) fillColor(c Color) {
	red, green, blue, _ := c.RGB()
	r.pdf.SetFillColor(red, green, blue)
}

func (r *renderer) logo(name string, slot Logo, data []byte) {
	if len(data) == 0 {
		return
	}

	data, typ, err := r.place(data, 0)
	if err != nil {
		r.logger.Warn("logo skipped", "logo", name, "error", err)
		return
	}

	opts := fpdf.ImageOptions{ImageType: typ}
	r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if r.pdf.Err() {
		r.logger.Warn("logo skipped", "logo", name, "error", r.pdf.Error())
		r.pdf.ClearError()
		return
	}
	r.pdf.ImageOptions(name, slot.X, slot.Y, slot.Width, 0, false, opts, 0, "")
}

func (r *renderer) title() {
	t := r.layout.Title
	width, _ := r.pdf.GetPageSize()

	r.pdf.SetFont(font, "B", t.Size)
	r.textColor(t.Color)
	r.pdf.SetXY(0, t.Y)
	r.pdf.CellFormat(width, t.Height, r.tr(t.Text), "", 0, "CM", false, 0, "")
}

func (r *renderer) divider() {
	d := r.layout.Divider
	width, _ := r.pdf.GetPageSize()

	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(1)
	r.pdf.Line(d.Inset, d.Y, width-d.Inset, d.Y)
	r.pdf.SetLineWidth(0.5)
}

func (r *renderer) field(f Field, value string) {
	r.pdf.SetTextColor(0, 0, 0)
	r.fillColor(r.layout.LabelFill)
	r.pdf.SetXY(f.X, f.Y)

	r.pdf.SetFont(font, "B", r.layout.FontSize)
	r.pdf.CellFormat(f.LabelWidth, f.Height, r.tr(f.Label), "1", 0, "LM", true, 0, "")

	r.pdf.SetFont(font, "", r.layout.FontSize)
	r.pdf.CellFormat(f.ValueWidth, f.Height, r.tr(value), "1", 0, "LM", false, 0, "")
}

func (r *renderer) description(text string) {
	d := r.layout.Description
	b := d.Box

	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.Rect(b.X, b.Y, b.W, b.H, "D")

	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.SetFont(font, "B", d.HeadingSize)
	r.pdf.SetXY(b.X, b.Y+2)
	r.pdf.CellFormat(b.W, d.HeadingSize+4, r.tr(d.Heading), "", 0, "LM", false, 0, "")

	r.pdf.SetFont(font, "", d.TextSize)
	top := b.Y + 2 + d.HeadingSize + 4
	capacity := int(math.Floor((b.Y + b.H - top) / d.LineHeight))

	for i, line := range r.wrap(text, b.W) {
		if i >= capacity {
			break
		}
		r.pdf.SetXY(b.X, top+float64(i)*d.LineHeight)
		r.pdf.CellFormat(b.W, d.LineHeight, line, "", 0, "LM", false, 0, "")
	}
}

// wrap splits text into lines no wider than width in the current font.
// Returned lines are already translated to the PDF code page.
func (r *renderer) wrap(text string, width float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(paragraph) == "" {
			lines = append(lines, "")
			continue
		}
		for _, line := range r.pdf.SplitLines([]byte(r.tr(paragraph)), width) {
			lines = append(lines, string(line))
		}
	}
	return lines
}

func (r *renderer) photoArea() {
	a := r.layout.PhotoArea
	b := a.Box

	r.fillColor(a.Fill)
	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.Rect(b.X, b.Y, b.W, b.H, "FD")

	r.pdf.SetFont(font, "B", a.HeadingSize)
	r.textColor(a.HeadingColor)
	r.pdf.SetXY(b.X, b.Y+20)
	r.pdf.CellFormat(b.W, a.HeadingSize+4, r.tr(a.Heading), "", 0, "CM", false, 0, "")
}

func (r *renderer) photos(photos map[string]Image) error {
	boxes := r.layout.Photos.Boxes()

	for _, slot := range r.layout.Photos.Slots {
		img, ok := photos[slot]
		if !ok || len(img.Data) == 0 {
			continue
		}
		if !Embeddable(img.ContentType) {
			r.logger.Debug("photo skipped", "slot", slot, "content_type", img.ContentType)
			continue
		}

		box := boxes[slot]
		data, typ, err := r.place(img.Data, int(box.W*photoResolution))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptImage, slot, err)
		}

		name := "photo-" + slot
		opts := fpdf.ImageOptions{ImageType: typ}
		r.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		if r.pdf.Err() {
			return fmt.Errorf("%w: %s: %v", ErrCorruptImage, slot, r.pdf.Error())
		}

		r.pdf.ImageOptions(name, box.X, box.Y, box.W, box.H, false, opts, 0, "")
	}
	return nil
}

// Embeddable reports whether a declared MIME type is JPEG or PNG.
func Embeddable(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "image/jpeg", "image/jpg", "image/pjpeg", "image/png":
		return true
	}
	return false
}

// place returns image data ready for registration along with its fpdf type.
// fpdf orders image objects by pixel width, so an image is re-encoded when
// another image with different content already holds its width, or when it
// is wider than limit pixels. A zero limit leaves the width unbounded.
func (r *renderer) place(data []byte, limit int) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	typ, err := imageType(format)
	if err != nil {
		return nil, "", err
	}

	width := cfg.Width
	if limit > 0 && width > limit {
		width = limit
	}
	width = r.claim(width, sha256.Sum256(data))
	if width == cfg.Width {
		return data, typ, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	height := max(1, cfg.Height*width/cfg.Width)
	out, err := resample(src, format, width, height)
	if err != nil {
		return nil, "", err
	}
	return out, typ, nil
}

// claim reserves the free pixel width closest to width for content sum,
// preferring narrower widths on ties. Identical content shares a width.
func (r *renderer) claim(width int, sum [sha256.Size]byte) int {
	for step := 0; ; step++ {
		for _, w := range []int{width - step, width + step} {
			if w < 1 {
				continue
			}
			owner, taken := r.widths[w]
			if !taken || owner == sum {
				r.widths[w] = sum
				return w
			}
		}
	}
}

func resample(src image.Image, format string, width, height int) ([]byte, error) {
	rect := image.Rect(0, 0, width, height)
	var buf bytes.Buffer

	if format == "png" {
		dst := image.NewNRGBA(rect)
		draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Src, nil)
		if err := png.Encode(&buf, dst); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	dst := image.NewRGBA(rect)
	draw.Draw(dst, rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, rect, src, src.Bounds(), draw.Over, nil)
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// imageType maps a decoded image format to the fpdf image type.
func imageType(format string) (string, error) {
	switch format {
	case "jpeg":
		return "JPG", nil
	case "png":
		return "PNG", nil
	}
	return "", fmt.Errorf("unsupported image format %s", format)
}
