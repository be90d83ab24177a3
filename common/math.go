package common

import "unsafe"

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// AlignUp rounds v up to the next multiple of align. align must be a power of two.
//
// Parameters:
//   - v: value to round
//   - align: power-of-two alignment
//
// Returns:
//   - uint64: the smallest multiple of align that is >= v
func AlignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}

// DispatchGroups returns the number of workgroups needed to cover n invocations
// with the given workgroup size along one axis, rounding up so partial groups
// still execute.
//
// Parameters:
//   - n: total invocations along the axis
//   - size: workgroup size along the axis (must be > 0)
//
// Returns:
//   - uint32: ceil(n / size)
func DispatchGroups(n, size uint32) uint32 {
	return (n + size - 1) / size
}
