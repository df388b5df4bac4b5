package montage

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrChannelCount indicates a signal block whose channel count does not
	// match the plan's channel list.
	ErrChannelCount = errors.New("montage: channel count mismatch")

	// ErrLengthMismatch indicates a pair whose two contact signals differ
	// in length.
	ErrLengthMismatch = errors.New("montage: pair signal lengths differ")
)

// Pair is one bipolar derivation. First and Second index the channel list
// the plan was built from; the pair's signal is first minus second.
type Pair struct {
	First  int
	Second int
	Name   string
}

// Plan holds the bipolar pairs derived from one channel list.
type Plan struct {
	pairs    []Pair
	excluded []string
	channels int
}

// NewPlan derives the bipolar pairs of a channel list. Names are sorted in
// contact order; adjacent contacts on the same lead form a pair named
// `<first>_<second contact>`. Names without a contact number are recorded
// as excluded.
func NewPlan(channels []string) *Plan {
	type rec struct {
		idx     int
		key     string
		name    string
		lead    string
		contact int
		hasNum  bool
	}

	all := make([]rec, len(channels))
	for i, orig := range channels {
		key := padKey(orig)
		name := stripPad(key)
		lead, contact, ok := splitName(name)
		all[i] = rec{idx: i, key: key, name: name, lead: lead, contact: contact, hasNum: ok}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].key < all[b].key })

	p := &Plan{channels: len(channels)}
	usable := make([]rec, 0, len(all))
	for _, r := range all {
		if r.hasNum {
			usable = append(usable, r)
		} else {
			p.excluded = append(p.excluded, channels[r.idx])
		}
	}

	for i := 0; i+1 < len(usable); i++ {
		a, b := usable[i], usable[i+1]
		if a.lead == b.lead && b.contact == a.contact+1 {
			p.pairs = append(p.pairs, Pair{
				First:  a.idx,
				Second: b.idx,
				Name:   a.name + "_" + strconv.Itoa(b.contact),
			})
		}
	}
	return p
}

// Len returns the number of bipolar pairs.
func (p *Plan) Len() int {
	return len(p.pairs)
}

// Pairs returns a copy of the bipolar pairs in montage order.
func (p *Plan) Pairs() []Pair {
	return append([]Pair(nil), p.pairs...)
}

// Names returns the pair names in montage order.
func (p *Plan) Names() []string {
	out := make([]string, len(p.pairs))
	for i, pr := range p.pairs {
		out[i] = pr.Name
	}
	return out
}

// Excluded returns the channel names that could not join any pair for lack
// of a contact number, in montage order.
func (p *Plan) Excluded() []string {
	return append([]string(nil), p.excluded...)
}

// Apply computes the bipolar signals of one block. The block must carry one
// signal per channel of the original list, in list order.
func (p *Plan) Apply(block [][]float64) ([][]float64, error) {
	if len(block) != p.channels {
		return nil, fmt.Errorf("%w: got %d signals for %d channels", ErrChannelCount, len(block), p.channels)
	}

	out := make([][]float64, len(p.pairs))
	for i, pr := range p.pairs {
		a, b := block[pr.First], block[pr.Second]
		if len(a) != len(b) {
			return nil, fmt.Errorf("%w: %s", ErrLengthMismatch, pr.Name)
		}

		diff := make([]float64, len(a))
		for j := range a {
			diff[j] = a[j] - b[j]
		}
		out[i] = diff
	}
	return out, nil
}

// SortChannels returns the names in montage order: sorted by the
// zero-padded form of single-digit contact numbers, with the padding
// stripped again afterward.
func SortChannels(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = padKey(name)
	}
	sort.Strings(out)
	for i, name := range out {
		out[i] = stripPad(name)
	}
	return out
}

// padKey widens a single-digit contact number to two digits so that
// lexicographic order matches contact order.
func padKey(name string) string {
	first, count := -1, 0
	for i, r := range name {
		if unicode.IsDigit(r) {
			count++
			if first < 0 {
				first = i
			}
		}
	}
	if count != 1 {
		return name
	}
	return name[:first] + "0" + name[first:]
}

// stripPad removes a single leading zero from the contact number.
func stripPad(name string) string {
	for i, r := range name {
		if unicode.IsDigit(r) {
			if r == '0' {
				return name[:i] + name[i+1:]
			}
			return name
		}
	}
	return name
}

// splitName separates a channel name into its lead label (letters and
// apostrophes) and contact number (all digits, concatenated). ok is false
// when the name carries no digits.
func splitName(name string) (lead string, contact int, ok bool) {
	var letters, digits strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || r == '\'':
			letters.WriteRune(r)
		case unicode.IsDigit(r):
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return letters.String(), 0, false
	}

	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return letters.String(), 0, false
	}
	return letters.String(), n, true
}
