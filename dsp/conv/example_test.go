package conv_test

import (
	"fmt"

	"github.com/mbrezny/sleepfeat/dsp/conv"
)

func ExampleConvolveMode() {
	// Centered 3-point moving average of an impulse.
	kernel := []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	out, err := conv.ConvolveMode([]float64{0, 0, 3, 0, 0}, kernel, conv.ModeSame)
	if err != nil {
		panic(err)
	}
	for i, y := range out {
		fmt.Printf("y[%d] = %.2f\n", i, y)
	}
	// Output:
	// y[0] = 0.00
	// y[1] = 1.00
	// y[2] = 1.00
	// y[3] = 1.00
	// y[4] = 0.00
}
