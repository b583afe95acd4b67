package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/phpdave11/gofpdi"
)

var (
	// ErrOutOfBounds signals resolved coordinates outside the page rectangle.
	ErrOutOfBounds = errors.New("coordinates outside page bounds")
	// ErrCorruptDocument signals a buffer that is not a parseable PDF.
	ErrCorruptDocument = errors.New("document is not a valid PDF")
	// ErrPageOutOfRange signals a 1-based page number the document does not have.
	ErrPageOutOfRange = errors.New("page does not exist")
)

// Text artifacts are drawn with a font size derived from the rectangle
// height rather than measured glyph metrics.
const textSizeFactor = 0.8

// Dim holds a page size in points.
type Dim struct {
	Width  float64
	Height float64
}

type ArtifactKind string

const (
	ArtifactText  ArtifactKind = "text"
	ArtifactImage ArtifactKind = "image"
)

// Artifact is the content drawn onto a page: either a literal string or an
// encoded PNG/JPEG image.
type Artifact struct {
	Kind  ArtifactKind
	Text  string
	Image []byte
	MIME  string
}

// Stamp pairs an artifact with its target page and resolved rectangle.
type Stamp struct {
	Page     int
	Artifact Artifact
	Rect     Rect
}

// Embedder mutates PDF byte buffers. It never touches repositories or the
// file system; persisting the returned bytes is the caller's job.
type Embedder interface {
	// PageInfo returns the page count and per-page dimensions in points.
	PageInfo(doc []byte) (int, []Dim, error)
	// Embed draws a single artifact and returns the re-serialized document.
	Embed(doc []byte, page int, artifact Artifact, rect Rect) ([]byte, error)
	// EmbedAll loads the document once and applies every stamp.
	EmbedAll(doc []byte, stamps []Stamp) ([]byte, error)
}

type fpdiEmbedder struct{}

// NewEmbedder returns an Embedder backed by gofpdf/gofpdi: the source pages
// are imported as form XObjects into a fresh document and the artifacts are
// drawn on top.
func NewEmbedder() Embedder {
	return &fpdiEmbedder{}
}

func (e *fpdiEmbedder) PageInfo(doc []byte) (count int, dims []Dim, err error) {
	// gofpdi panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			count, dims, err = 0, nil, fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(doc)
	imp.SetSourceStream(&rs)

	count = imp.GetNumPages()
	if count == 0 {
		return 0, nil, ErrCorruptDocument
	}

	sizes := imp.GetPageSizes()
	dims = make([]Dim, count)
	for i := 1; i <= count; i++ {
		box := sizes[i]["/MediaBox"]
		dims[i-1] = Dim{Width: box["w"], Height: box["h"]}
	}
	return count, dims, nil
}

func (e *fpdiEmbedder) Embed(doc []byte, page int, artifact Artifact, rect Rect) ([]byte, error) {
	return e.EmbedAll(doc, []Stamp{{Page: page, Artifact: artifact, Rect: rect}})
}

func (e *fpdiEmbedder) EmbedAll(doc []byte, stamps []Stamp) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(doc)
	imp.SetSourceStream(&rs)

	pageCount := imp.GetNumPages()
	if pageCount == 0 {
		return nil, ErrCorruptDocument
	}
	for _, st := range stamps {
		if st.Page < 1 || st.Page > pageCount {
			return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, st.Page, pageCount)
		}
	}

	sizes := imp.GetPageSizes()
	f := gofpdf.New("P", "pt", "", "")
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)

	imgSeq := 0
	for pageNo := 1; pageNo <= pageCount; pageNo++ {
		box := sizes[pageNo]["/MediaBox"]
		pageW, pageH := box["w"], box["h"]
		f.AddPageFormat("P", gofpdf.SizeType{Wd: pageW, Ht: pageH})

		tpl := imp.ImportPage(pageNo, "/MediaBox")
		f.ImportTemplates(imp.PutFormXobjectsUnordered())
		f.ImportObjects(imp.GetImportedObjectsUnordered())
		f.ImportObjPos(imp.GetImportedObjHashPos())
		name, sx, sy, tx, ty := imp.UseTemplate(tpl, 0, 0, pageW, pageH)
		f.UseImportedTemplate(name, sx, sy, tx, ty)

		for _, st := range stamps {
			if st.Page != pageNo {
				continue
			}
			imgSeq++
			if err := drawArtifact(f, st.Artifact, st.Rect, pageH, fmt.Sprintf("sig-%d", imgSeq)); err != nil {
				return nil, err
			}
		}
	}

	if f.Err() {
		return nil, fmt.Errorf("embed signature: %w", f.Error())
	}
	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize signed document: %w", err)
	}
	return buf.Bytes(), nil
}

// drawArtifact renders one artifact. rect is in PDF space (bottom-left
// origin); gofpdf draws from the top-left, so the vertical axis is mapped
// back before drawing.
func drawArtifact(f *gofpdf.Fpdf, a Artifact, rect Rect, pageHeight float64, imgName string) error {
	switch a.Kind {
	case ArtifactText:
		f.SetFont("Helvetica", "", rect.Height*textSizeFactor)
		f.SetTextColor(0, 0, 0)
		// Baseline sits at the bottom edge of the rectangle.
		f.Text(rect.X, pageHeight-rect.Y, a.Text)
		return nil
	case ArtifactImage:
		imgType, err := imageType(a.MIME)
		if err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
		f.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(a.Image))
		top := pageHeight - rect.Y - rect.Height
		f.ImageOptions(imgName, rect.X, top, rect.Width, rect.Height, false, opts, 0, "")
		return nil
	default:
		return fmt.Errorf("unsupported artifact kind %q", a.Kind)
	}
}

func imageType(mime string) (string, error) {
	switch mime {
	case "image/png":
		return "PNG", nil
	case "image/jpeg", "image/jpg":
		return "JPG", nil
	default:
		return "", fmt.Errorf("unsupported signature image type %q", mime)
	}
}
