package codec

import (
	"github.com/gomlx/go-charseq/api"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// EncodeTensor encodes text like Encode, but returns a Float32 tensor shaped [len(runes), V],
// ready to be fed to a GoMLX model.
//
// Empty text is an error, since tensors with a zero-sized axis are not useful model inputs.
func (c *Codec) EncodeTensor(text string) (*tensors.Tensor, error) {
	indices, err := c.Indices(text)
	if err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, errors.Errorf("can't encode empty text into a tensor")
	}
	vocabSize := c.vocab.Size()
	flat := make([]float32, len(indices)*vocabSize)
	for row, index := range indices {
		flat[row*vocabSize+index] = 1
	}
	return tensors.FromFlatDataAndDimensions(flat, len(indices), vocabSize), nil
}

// DecodeTensor decodes a rank-2 Float32 or Float64 tensor shaped [numRows, V] with the same rules
// as Decode.
func (c *Codec) DecodeTensor(t *tensors.Tensor) (string, error) {
	shape := t.Shape()
	if len(shape.Dimensions) != 2 {
		return "", errors.Errorf("one-hot tensor must be rank 2, got shape %s", shape)
	}
	numRows, vocabSize := shape.Dimensions[0], shape.Dimensions[1]
	if vocabSize != c.vocab.Size() {
		return "", api.NewLookupError(api.ErrRowWidthMismatch, 0, vocabSize, -1)
	}

	matrix := make([][]float64, numRows)
	var typeErr error
	err := t.ConstFlatData(func(flat any) {
		switch flat := flat.(type) {
		case []float32:
			for row := range numRows {
				matrix[row] = make([]float64, vocabSize)
				for col, value := range flat[row*vocabSize : (row+1)*vocabSize] {
					matrix[row][col] = float64(value)
				}
			}
		case []float64:
			for row := range numRows {
				matrix[row] = make([]float64, vocabSize)
				copy(matrix[row], flat[row*vocabSize:(row+1)*vocabSize])
			}
		default:
			typeErr = errors.Errorf("one-hot tensor must be Float32 or Float64, got %s", t.DType())
		}
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to read one-hot tensor")
	}
	if typeErr != nil {
		return "", typeErr
	}
	return c.Decode(matrix)
}
