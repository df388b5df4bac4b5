package pipeline_test

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbrezny/sleepfeat/internal/testutil"
	"github.com/mbrezny/sleepfeat/pipeline"
)

func ExampleRunner_Run() {
	// Three contacts on one electrode give two bipolar pairs. The
	// recording starts on a full minute, so the epoch grid begins 29 s
	// in; three 30-second epochs fit with their overlap reads.
	start := time.Date(2024, 2, 10, 23, 30, 0, 0, time.UTC)
	const rate = 2000.0
	samples := int(29*rate) + 3*int(30*rate) + int(1.25*rate)

	names := []string{"A1", "A2", "A3"}
	data := make([][]float64, len(names))
	for i := range data {
		data[i] = testutil.NoisySine(9+float64(i), rate, 120, 10, int64(i+1), samples)
	}
	src, err := pipeline.NewBufferSource(start, rate, names, data)
	if err != nil {
		panic(err)
	}

	runner, err := pipeline.New(src, pipeline.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		panic(err)
	}
	res, err := runner.Run(context.Background())
	if err != nil {
		panic(err)
	}

	fmt.Println("pairs:", res.Pairs)
	fmt.Printf("epochs=%d features=%d\n", res.Features.Epochs(), res.Features.Features())
	// Output:
	// pairs: [A1_2 A2_3]
	// epochs=3 features=21
}
