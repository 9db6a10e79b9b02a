package dlpack

import "fmt"

// DeviceType identifies the kind of memory a tensor lives in.
// Values match DLDeviceType.
type DeviceType int32

const (
	DeviceCPU         DeviceType = 1
	DeviceCUDA        DeviceType = 2
	DeviceCUDAHost    DeviceType = 3
	DeviceOpenCL      DeviceType = 4
	DeviceVulkan      DeviceType = 7
	DeviceMetal       DeviceType = 8
	DeviceVPI         DeviceType = 9
	DeviceROCM        DeviceType = 10
	DeviceROCMHost    DeviceType = 11
	DeviceExtDev      DeviceType = 12
	DeviceCUDAManaged DeviceType = 13
	DeviceOneAPI      DeviceType = 14
	DeviceWebGPU      DeviceType = 15
	DeviceHexagon     DeviceType = 16
)

// String returns the name of the device type
func (d DeviceType) String() string {
	switch d {
	case DeviceCPU:
		return "cpu"
	case DeviceCUDA:
		return "cuda"
	case DeviceCUDAHost:
		return "cuda_host"
	case DeviceOpenCL:
		return "opencl"
	case DeviceVulkan:
		return "vulkan"
	case DeviceMetal:
		return "metal"
	case DeviceVPI:
		return "vpi"
	case DeviceROCM:
		return "rocm"
	case DeviceROCMHost:
		return "rocm_host"
	case DeviceExtDev:
		return "ext_dev"
	case DeviceCUDAManaged:
		return "cuda_managed"
	case DeviceOneAPI:
		return "oneapi"
	case DeviceWebGPU:
		return "webgpu"
	case DeviceHexagon:
		return "hexagon"
	default:
		return fmt.Sprintf("device(%d)", int32(d))
	}
}

// Device is a device type plus an ordinal. Layout matches DLDevice.
type Device struct {
	Type DeviceType `json:"device_type"`
	ID   int32      `json:"device_id"`
}

// CPU is host memory, the only device this module produces.
var CPU = Device{Type: DeviceCPU}

func (d Device) String() string {
	return fmt.Sprintf("%s:%d", d.Type, d.ID)
}

// DataTypeCode is the element kind. Values match DLDataTypeCode.
type DataTypeCode uint8

const (
	Int          DataTypeCode = 0
	UInt         DataTypeCode = 1
	Float        DataTypeCode = 2
	OpaqueHandle DataTypeCode = 3
	Bfloat       DataTypeCode = 4
	Complex      DataTypeCode = 5
	BoolCode     DataTypeCode = 6
)

// DataType describes a tensor element. Layout matches DLDataType.
type DataType struct {
	Code  DataTypeCode `json:"code"`
	Bits  uint8        `json:"bits"`
	Lanes uint16       `json:"lanes"`
}

// Common element types.
var (
	U8   = DataType{Code: UInt, Bits: 8, Lanes: 1}
	U16  = DataType{Code: UInt, Bits: 16, Lanes: 1}
	U32  = DataType{Code: UInt, Bits: 32, Lanes: 1}
	U64  = DataType{Code: UInt, Bits: 64, Lanes: 1}
	I8   = DataType{Code: Int, Bits: 8, Lanes: 1}
	I16  = DataType{Code: Int, Bits: 16, Lanes: 1}
	I32  = DataType{Code: Int, Bits: 32, Lanes: 1}
	I64  = DataType{Code: Int, Bits: 64, Lanes: 1}
	F16  = DataType{Code: Float, Bits: 16, Lanes: 1}
	F32  = DataType{Code: Float, Bits: 32, Lanes: 1}
	F64  = DataType{Code: Float, Bits: 64, Lanes: 1}
	Bool = DataType{Code: BoolCode, Bits: 8, Lanes: 1}
)

// ItemSize returns the number of bytes one element occupies, rounded up.
func (dt DataType) ItemSize() int {
	return (int(dt.Bits)*int(dt.Lanes) + 7) / 8
}

// String returns names such as "uint8", "float32" or "float32x4".
func (dt DataType) String() string {
	var name string
	switch dt.Code {
	case Int:
		name = fmt.Sprintf("int%d", dt.Bits)
	case UInt:
		name = fmt.Sprintf("uint%d", dt.Bits)
	case Float:
		name = fmt.Sprintf("float%d", dt.Bits)
	case OpaqueHandle:
		name = fmt.Sprintf("handle%d", dt.Bits)
	case Bfloat:
		name = fmt.Sprintf("bfloat%d", dt.Bits)
	case Complex:
		name = fmt.Sprintf("complex%d", dt.Bits)
	case BoolCode:
		name = "bool"
	default:
		name = fmt.Sprintf("code%d_%d", dt.Code, dt.Bits)
	}
	if dt.Lanes > 1 {
		name = fmt.Sprintf("%sx%d", name, dt.Lanes)
	}
	return name
}
