package imaging

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	"github.com/ironsheep/dlparkimg/internal/dlpack"
)

// rawTensor describes an arbitrary host buffer.
type rawTensor struct {
	buf     []byte
	shape   []int64
	strides []int64
	dtype   dlpack.DataType
	device  dlpack.Device
}

func newRawTensor(buf []byte, shape ...int64) *rawTensor {
	return &rawTensor{buf: buf, shape: shape, dtype: dlpack.U8, device: dlpack.CPU}
}

func (r *rawTensor) DataPtr() unsafe.Pointer {
	if len(r.buf) == 0 {
		return nil
	}
	return unsafe.Pointer(&r.buf[0])
}

func (r *rawTensor) ByteOffset() uint64 { return 0 }

func (r *rawTensor) Shape() []int64 { return r.shape }

func (r *rawTensor) Device() dlpack.Device { return r.device }

func (r *rawTensor) DType() dlpack.DataType { return r.dtype }

func (r *rawTensor) Strides() []int64 { return r.strides }

func (r *rawTensor) Bytes() []byte { return r.buf }

// pointerOnly hides the Bytes method of the wrapped tensor.
type pointerOnly struct{ dlpack.Tensor }

func TestWriteImage_RoundTrip(t *testing.T) {
	src := createTestImageWithPattern(t, 8, 6)
	defer os.Remove(src)

	original, err := ReadImage(src)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}

	for _, ext := range []string{".png", ".bmp", ".tif"} {
		t.Run(ext, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "out"+ext)

			res, err := WriteImage(dst, original)
			if err != nil {
				t.Fatalf("WriteImage failed: %v", err)
			}
			if res.Width != 8 || res.Height != 6 {
				t.Errorf("WriteResult dimensions: got %dx%d, want 8x6", res.Width, res.Height)
			}

			again, err := ReadImage(dst)
			if err != nil {
				t.Fatalf("ReadImage after write failed: %v", err)
			}
			if diff := cmp.Diff(original.Shape(), again.Shape()); diff != "" {
				t.Errorf("Shape mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(original.Pix, again.Pix); diff != "" {
				t.Errorf("Pix mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWriteImage_SolidRedRoundTrip(t *testing.T) {
	src := createTestImage(t, 3, 2, color.RGBA{255, 0, 0, 255})
	defer os.Remove(src)

	img, err := ReadImage(src)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "red.png")
	if _, err := WriteImage(dst, img); err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}

	again, err := ReadImage(dst)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	want := []byte{
		255, 0, 0, 255, 0, 0, 255, 0, 0,
		255, 0, 0, 255, 0, 0, 255, 0, 0,
	}
	if diff := cmp.Diff(want, again.Pix); diff != "" {
		t.Errorf("Pix mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteImage_ManagedTensor(t *testing.T) {
	img := &RGBImage{Pix: []byte{1, 2, 3, 4, 5, 6}, Width: 2, Height: 1}
	mt, err := dlpack.NewManagedTensor(img)
	if err != nil {
		t.Fatalf("NewManagedTensor: %v", err)
	}
	defer mt.Release()

	dst := filepath.Join(t.TempDir(), "managed.png")
	if _, err := WriteImage(dst, mt); err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}

	again, err := ReadImage(dst)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if diff := cmp.Diff(img.Pix, again.Pix); diff != "" {
		t.Errorf("Pix mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteImage_ManagedPointerOnly(t *testing.T) {
	pix := []byte{
		255, 0, 0, 0, 255, 0, 0, 0, 255,
		10, 20, 30, 40, 50, 60, 70, 80, 90,
	}
	mt, err := dlpack.NewManagedTensor(pointerOnly{newRawTensor(pix, 2, 3, 3)})
	if err != nil {
		t.Fatalf("NewManagedTensor: %v", err)
	}
	defer mt.Release()

	dst := filepath.Join(t.TempDir(), "pointer.png")
	res, err := WriteImage(dst, mt)
	if err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}
	if res.Width != 3 || res.Height != 2 {
		t.Errorf("WriteResult size: got %dx%d, want 3x2", res.Width, res.Height)
	}

	again, err := ReadImage(dst)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if diff := cmp.Diff(pix, again.Pix); diff != "" {
		t.Errorf("Pix mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteImage_ExplicitDenseStrides(t *testing.T) {
	rt := newRawTensor([]byte{9, 8, 7, 6, 5, 4}, 1, 2, 3)
	rt.strides = []int64{6, 3, 1}

	dst := filepath.Join(t.TempDir(), "strided.png")
	if _, err := WriteImage(dst, rt); err != nil {
		t.Fatalf("WriteImage with dense strides failed: %v", err)
	}
}

func TestWriteImage_ShapeMismatch(t *testing.T) {
	tests := []struct {
		name   string
		tensor dlpack.Tensor
	}{
		{"buffer too short", &RGBImage{Pix: make([]byte, 10), Width: 2, Height: 3}},
		{"buffer too long", newRawTensor(make([]byte, 20), 2, 3, 3)},
		{"two dimensions", newRawTensor(make([]byte, 6), 2, 3)},
		{"four channels", newRawTensor(make([]byte, 24), 2, 3, 4)},
		{"float dtype", &rawTensor{buf: make([]byte, 72), shape: []int64{2, 3, 3}, dtype: dlpack.F32, device: dlpack.CPU}},
		{"cuda device", &rawTensor{buf: make([]byte, 18), shape: []int64{2, 3, 3}, dtype: dlpack.U8, device: dlpack.Device{Type: dlpack.DeviceCUDA}}},
		{"overflowing dimensions", pointerOnly{newRawTensor(make([]byte, 3), math.MaxInt32, math.MaxInt32, 3)}},
		{"transposed strides", &rawTensor{buf: make([]byte, 18), shape: []int64{2, 3, 3}, strides: []int64{3, 6, 1}, dtype: dlpack.U8, device: dlpack.CPU}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := filepath.Join(t.TempDir(), "out.png")
			_, err := WriteImage(dst, tt.tensor)

			var shapeErr *ShapeMismatchError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("WriteImage error = %v, want *ShapeMismatchError", err)
			}
			if _, statErr := os.Stat(dst); statErr == nil {
				t.Error("no file should be written on shape mismatch")
			}
		})
	}
}

func TestWriteImage_StridedWrapsNotContiguous(t *testing.T) {
	rt := newRawTensor(make([]byte, 18), 2, 3, 3)
	rt.strides = []int64{3, 6, 1}
	_, err := WriteImage(filepath.Join(t.TempDir(), "out.png"), rt)
	if !errors.Is(err, dlpack.ErrNotContiguous) {
		t.Errorf("error = %v, want wrapped ErrNotContiguous", err)
	}
}

func TestWriteImage_EncodeErrors(t *testing.T) {
	img := &RGBImage{Pix: make([]byte, 12), Width: 2, Height: 2}

	t.Run("unknown extension", func(t *testing.T) {
		_, err := WriteImage(filepath.Join(t.TempDir(), "out.xyz"), img)
		var encodeErr *EncodeError
		if !errors.As(err, &encodeErr) {
			t.Fatalf("WriteImage error = %v, want *EncodeError", err)
		}
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("EncodeError should wrap ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := WriteImage(filepath.Join(t.TempDir(), "no", "such", "dir", "out.png"), img)
		var encodeErr *EncodeError
		if !errors.As(err, &encodeErr) {
			t.Errorf("WriteImage error = %v, want *EncodeError", err)
		}
	})
}

func TestWriteImage_Overwrites(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.png")
	first := &RGBImage{Pix: []byte{1, 1, 1}, Width: 1, Height: 1}
	second := &RGBImage{Pix: []byte{2, 2, 2}, Width: 1, Height: 1}

	if _, err := WriteImage(dst, first); err != nil {
		t.Fatalf("first WriteImage failed: %v", err)
	}
	if _, err := WriteImage(dst, second); err != nil {
		t.Fatalf("second WriteImage failed: %v", err)
	}

	got, err := ReadImage(dst)
	if err != nil {
		t.Fatalf("ReadImage failed: %v", err)
	}
	if diff := cmp.Diff(second.Pix, got.Pix); diff != "" {
		t.Errorf("Pix mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteImage_JPEG(t *testing.T) {
	img := &RGBImage{Pix: make([]byte, 16*16*3), Width: 16, Height: 16}
	for i := range img.Pix {
		img.Pix[i] = 128
	}

	dst := filepath.Join(t.TempDir(), "out.jpg")
	res, err := WriteImage(dst, img, WithJPEGQuality(80))
	if err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}
	if res.Format != "JPEG" {
		t.Errorf("Format: got %s, want JPEG", res.Format)
	}

	info, err := ReadImageInfo(dst)
	if err != nil {
		t.Fatalf("ReadImageInfo failed: %v", err)
	}
	if info.Format != "jpeg" || info.Width != 16 || info.Height != 16 {
		t.Errorf("unexpected info: %+v", info)
	}
}
