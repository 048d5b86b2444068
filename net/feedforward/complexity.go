package feedforward

// LayerComplexity is the cost of one layer for a single sample.
type LayerComplexity struct {
	Kind    string
	Inputs  int
	Outputs int

	// MACs counts multiply-accumulate operations; elementwise layers count
	// one operation per output element.
	MACs   int
	Params int
}

// Complexity reports the per-sample cost of every layer.
func (f *FeedforwardNetwork) Complexity() (o []LayerComplexity) {
	in := f.inputs
	for _, l := range f.layers {
		out := l.Outputs(in)
		c := LayerComplexity{Kind: l.Kind(), Inputs: in, Outputs: out}
		for _, p := range l.Params() {
			c.Params += len(p.Value)
		}
		switch l.(type) {
		case *Linear:
			c.MACs = in*out + out
		default:
			c.MACs = out
		}
		o = append(o, c)
		in = out
	}
	return
}

// TotalComplexity sums the per-sample cost of the network.
func (f *FeedforwardNetwork) TotalComplexity() (macs, params int) {
	for _, c := range f.Complexity() {
		macs += c.MACs
		params += c.Params
	}
	return
}
