package feedforward

import "compress/lzw"
import "encoding/json"
import "io"
import "os"

import "github.com/pkg/errors"

type layerWeights struct {
	Kind   string               `json:"kind"`
	Params map[string][]float64 `json:"params,omitempty"`
}

type networkWeights struct {
	Inputs int            `json:"inputs"`
	Layers []layerWeights `json:"layers"`
}

// WriteCompressedWeightsToFile writes model weights to a lzw file
func (f *FeedforwardNetwork) WriteCompressedWeightsToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedWeights(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedWeights writes model weights to a writer
func (f *FeedforwardNetwork) WriteCompressedWeights(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)

	var nw = networkWeights{Inputs: f.inputs}
	for _, l := range f.layers {
		var lay = layerWeights{Kind: l.Kind()}
		for _, p := range l.Params() {
			if lay.Params == nil {
				lay.Params = make(map[string][]float64)
			}
			lay.Params[p.Name] = p.Value
		}
		nw.Layers = append(nw.Layers, lay)
	}
	if err := json.NewEncoder(lw).Encode(nw); err != nil {
		lw.Close()
		return err
	}
	return lw.Close()
}

// ReadCompressedWeightsFromFile reads model weights from a lzw file
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = f.ReadCompressedWeights(file)
	file.Close()
	return err
}

// ReadCompressedWeights reads model weights from a reader into a network of
// the same topology.
func (f *FeedforwardNetwork) ReadCompressedWeights(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	var nw networkWeights
	if err := json.NewDecoder(lr).Decode(&nw); err != nil {
		return errors.Wrap(err, "decoding weights")
	}
	if nw.Inputs != f.inputs || len(nw.Layers) != len(f.layers) {
		return errors.Errorf("weights for %d inputs and %d layers, network has %d inputs and %d layers",
			nw.Inputs, len(nw.Layers), f.inputs, len(f.layers))
	}
	for i, l := range f.layers {
		if nw.Layers[i].Kind != l.Kind() {
			return errors.Errorf("layer %d is %s in weights, %s in network", i, nw.Layers[i].Kind, l.Kind())
		}
		for _, p := range l.Params() {
			v, ok := nw.Layers[i].Params[p.Name]
			if !ok || len(v) != len(p.Value) {
				return errors.Errorf("layer %d %s: want %d values, got %d", i, p.Name, len(p.Value), len(v))
			}
			copy(p.Value, v)
		}
	}
	return nil
}
