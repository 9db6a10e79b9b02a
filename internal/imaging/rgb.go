package imaging

import (
	"image"
	"unsafe"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/dlparkimg/internal/dlpack"
)

// Channels is the number of interleaved samples per pixel in an RGBImage.
const Channels = 3

// RGBImage is a dense 8-bit RGB pixel buffer that describes itself as a
// DLPack tensor of shape [Height, Width, 3].
//
// Pix holds Height*Width*3 bytes in row-major order with channels
// interleaved (R, G, B) and no padding between rows. The image owns Pix;
// tensors exported from it borrow the same memory.
type RGBImage struct {
	Pix    []byte
	Width  int
	Height int
}

// NewRGBImage converts img to 8-bit RGB without resizing.
//
// The conversion goes through non-premultiplied RGBA and discards alpha, so
// translucent pixels keep their colour rather than being blended against
// black. Sources with 16 bits per channel keep only the high byte of each
// sample; the conversion is lossy-truncating for those images.
func NewRGBImage(img image.Image) *RGBImage {
	nrgba := imaging.Clone(img)
	w, h := nrgba.Rect.Dx(), nrgba.Rect.Dy()

	out := &RGBImage{
		Pix:    make([]byte, w*h*Channels),
		Width:  w,
		Height: h,
	}
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+w*4]
		dst := out.Pix[y*w*Channels : (y+1)*w*Channels]
		for x := 0; x < w; x++ {
			dst[x*3+0] = src[x*4+0]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return out
}

// DataPtr returns the address of Pix[0], or nil for an empty image.
func (m *RGBImage) DataPtr() unsafe.Pointer {
	if len(m.Pix) == 0 {
		return nil
	}
	return unsafe.Pointer(&m.Pix[0])
}

// ByteOffset is always zero.
func (m *RGBImage) ByteOffset() uint64 { return 0 }

// Shape returns [Height, Width, 3].
func (m *RGBImage) Shape() []int64 {
	return []int64{int64(m.Height), int64(m.Width), Channels}
}

func (m *RGBImage) Device() dlpack.Device { return dlpack.CPU }

func (m *RGBImage) DType() dlpack.DataType { return dlpack.U8 }

// Strides returns nil: the buffer is dense row-major.
func (m *RGBImage) Strides() []int64 { return nil }

func (m *RGBImage) Bytes() []byte { return m.Pix }

// RGBAt returns the pixel at (x, y).
func (m *RGBImage) RGBAt(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * Channels
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// toNRGBA expands a dense RGB buffer into an opaque NRGBA image for encoding.
func toNRGBA(pix []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i < len(pix); i, j = i+3, j+4 {
		img.Pix[j+0] = pix[i+0]
		img.Pix[j+1] = pix[i+1]
		img.Pix[j+2] = pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

var (
	_ dlpack.Tensor = (*RGBImage)(nil)
	_ dlpack.Bytes  = (*RGBImage)(nil)
)
