// Package ml holds the named tensors exchanged with an inference engine.
package ml

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/exp/constraints"
	"gorgonia.org/tensor"

	"go.viam.com/arlens/utils"
)

// Tensor is a dense tensor whose backing memory may be owned by an inference engine. Release
// hands it back and is safe to call more than once; only the first call reaches the owner.
type Tensor struct {
	*tensor.Dense
	release  func() error
	released atomic.Bool
}

// NewTensor wraps dense. release may be nil when there is nothing to give back.
func NewTensor(dense *tensor.Dense, release func() error) *Tensor {
	return &Tensor{Dense: dense, release: release}
}

// NewTensorFromSlice builds a tensor of the given shape over backing.
func NewTensorFromSlice[T number](backing []T, shape ...int) *Tensor {
	return NewTensor(tensor.New(tensor.WithShape(shape...), tensor.WithBacking(backing)), nil)
}

// Release gives the tensor back to its owner. Only the first call has an effect.
func (t *Tensor) Release() error {
	if t == nil || !t.released.CompareAndSwap(false, true) {
		return nil
	}
	if t.release == nil {
		return nil
	}
	return t.release()
}

// Released reports whether Release has been called.
func (t *Tensor) Released() bool {
	return t.released.Load()
}

// Float64Data returns the tensor's backing data converted to float64.
func (t *Tensor) Float64Data() ([]float64, error) {
	if t == nil || t.Dense == nil {
		return nil, errors.New("tensor has no data")
	}
	return convertToFloat64Slice(t.Data())
}

// Tensors are a map of names to tensors.
type Tensors map[string]*Tensor

// Release releases every tensor and combines their errors.
func (ts Tensors) Release() error {
	var err error
	for _, name := range ts.Names() {
		err = multierr.Combine(err, errors.Wrapf(ts[name].Release(), "releasing tensor %q", name))
	}
	return err
}

// Names returns all the names of the tensors, sorted.
func (ts Tensors) Names() []string {
	names := lo.Keys(ts)
	sort.Strings(names)
	return names
}

// Lookup returns the tensors with the given names, failing on the first one that is missing.
func (ts Tensors) Lookup(names ...string) (Tensors, error) {
	found := make(Tensors, len(names))
	for _, name := range names {
		t, ok := ts[name]
		if !ok || t == nil {
			return nil, errors.Errorf("no tensor named %q among output tensors [%s]", name, strings.Join(ts.Names(), ", "))
		}
		found[name] = t
	}
	return found, nil
}

// number interface for converting between numbers.
type number interface {
	constraints.Integer | constraints.Float
}

// convertNumberSlice converts any number slice into another number slice.
func convertNumberSlice[T1, T2 number](t1 []T1) []T2 {
	t2 := make([]T2, len(t1))
	for i := range t1 {
		t2[i] = T2(t1[i])
	}
	return t2
}

func convertToFloat64Slice(slice interface{}) ([]float64, error) {
	switch v := slice.(type) {
	case []float64:
		return v, nil
	case float64:
		return []float64{v}, nil
	case []float32:
		return convertNumberSlice[float32, float64](v), nil
	case float32:
		return []float64{float64(v)}, nil
	case []int:
		return convertNumberSlice[int, float64](v), nil
	case []int32:
		return convertNumberSlice[int32, float64](v), nil
	case []int64:
		return convertNumberSlice[int64, float64](v), nil
	case []uint8:
		return convertNumberSlice[uint8, float64](v), nil
	case []uint16:
		return convertNumberSlice[uint16, float64](v), nil
	case []uint32:
		return convertNumberSlice[uint32, float64](v), nil
	default:
		return nil, errors.Wrap(utils.NewUnexpectedTypeError([]float64{}, slice), "converting tensor data")
	}
}
