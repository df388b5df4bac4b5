// Package montage derives bipolar channels from unipolar electrode
// recordings.
//
// Channel names carry an alphabetic lead label and a numeric contact index
// (A1, A2, B'10). The montage sorts names in contact order, pairs adjacent
// contacts on the same lead and represents each bipolar channel as the
// sample-wise difference of its two contacts. Names without a contact
// number cannot be paired; they are reported, not rejected.
package montage
