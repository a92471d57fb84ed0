package dectree

import (
	"bytes"
	"encoding/gob"
	"io"

	"github.com/ar90n/dectree/tree"
	"github.com/cockroachdb/errors"
)

// modelMagic prefixes every saved model.
const modelMagic = "dectree1"

func saveModel(model *Model, w io.Writer) error {
	tree.Register()

	var buffer bytes.Buffer
	buffer.WriteString(modelMagic)
	enc := gob.NewEncoder(&buffer)
	if err := enc.Encode(model); err != nil {
		return errors.Wrap(err, "encode model")
	}

	if _, err := buffer.WriteTo(w); err != nil {
		return errors.Wrap(err, "write model")
	}

	return nil
}

func loadModel(r io.Reader) (*Model, error) {
	tree.Register()

	magic := make([]byte, len(modelMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != modelMagic {
		return nil, ErrUnknownFormat
	}

	var model Model
	dec := gob.NewDecoder(r)
	if err := dec.Decode(&model); err != nil {
		return nil, errors.Wrap(err, "decode model")
	}
	if model.Root == nil {
		return nil, ErrNoTree
	}
	if err := tree.Validate(model.Root); err != nil {
		return nil, errors.Wrapf(ErrUnknownFormat, "%v", err)
	}

	return &model, nil
}
