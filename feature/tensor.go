package feature

// Tensor is a dense [channel][epoch][feature] block backed by a single
// contiguous array. Rows of distinct (channel, epoch) pairs never share
// memory, so concurrent writers can fill different rows without locking.
type Tensor struct {
	channels int
	capacity int
	features int
	epochs   int
	data     []float64
}

// NewTensor allocates a zeroed tensor holding up to maxEpochs epochs per
// channel. The epoch axis starts fully visible; call Truncate once the
// number of produced epochs is known.
func NewTensor(channels, maxEpochs, features int) *Tensor {
	channels = max(channels, 0)
	maxEpochs = max(maxEpochs, 0)
	features = max(features, 0)
	return &Tensor{
		channels: channels,
		capacity: maxEpochs,
		features: features,
		epochs:   maxEpochs,
		data:     make([]float64, channels*maxEpochs*features),
	}
}

// Channels returns the number of channels.
func (t *Tensor) Channels() int { return t.channels }

// Epochs returns the number of visible epochs.
func (t *Tensor) Epochs() int { return t.epochs }

// Features returns the length of each feature vector.
func (t *Tensor) Features() int { return t.features }

// Truncate limits the epoch axis to the first n epochs. Values outside the
// visible range stay in the backing array but are ignored by Column,
// Quarantine and Process.
func (t *Tensor) Truncate(n int) {
	n = max(n, 0)
	t.epochs = min(n, t.capacity)
}

// Row returns the feature vector of one (channel, epoch) pair as a mutable
// view into the tensor. Epochs beyond the visible range remain addressable
// up to the allocated capacity. Panics when the indices are out of range.
func (t *Tensor) Row(channel, epoch int) []float64 {
	if channel < 0 || channel >= t.channels || epoch < 0 || epoch >= t.capacity {
		panic("feature: tensor row out of range")
	}
	base := (channel*t.capacity + epoch) * t.features
	return t.data[base : base+t.features : base+t.features]
}

// Column copies the epoch series of one (channel, feature) slot. The copy
// covers the visible epochs only.
func (t *Tensor) Column(channel, feature int) []float64 {
	if channel < 0 || channel >= t.channels || feature < 0 || feature >= t.features {
		panic("feature: tensor column out of range")
	}
	out := make([]float64, t.epochs)
	for e := range out {
		out[e] = t.data[(channel*t.capacity+e)*t.features+feature]
	}
	return out
}

// SetColumn writes vals back into the epoch series of one (channel,
// feature) slot. The length of vals must match the visible epoch count.
func (t *Tensor) SetColumn(channel, feature int, vals []float64) {
	if channel < 0 || channel >= t.channels || feature < 0 || feature >= t.features {
		panic("feature: tensor column out of range")
	}
	if len(vals) != t.epochs {
		panic("feature: column length mismatch")
	}
	for e, v := range vals {
		t.data[(channel*t.capacity+e)*t.features+feature] = v
	}
}
