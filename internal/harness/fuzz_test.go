package harness_test

import (
	"bytes"
	"testing"

	"github.com/calvinalkan/rexfuzz/internal/harness"
)

// fuzzVariant seeds f with the variant's curated seeds and runs every input
// through the driver. Only panics and hangs in the engine are findings.
func fuzzVariant(f *testing.F, name string) {
	f.Helper()

	v := harness.MustVariant(name)

	for _, seed := range harness.CuratedSeeds(v) {
		f.Add(seed.Data)
	}

	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add(bytes.Repeat([]byte{0xff}, 64))
	f.Add([]byte("rexfuzz"))

	driver := harness.NewDriver(v, harness.RexgenTarget{})

	f.Fuzz(func(t *testing.T, data []byte) {
		tc := driver.Decode(data)

		if tc.Consumed > len(data) {
			t.Fatalf("consumed %d of %d bytes", tc.Consumed, len(data))
		}

		if len(tc.Examples) == 0 {
			t.Fatal("normalized example set is empty")
		}

		driver.Run(data)
	})
}

func FuzzDriver_BuilderCalls(f *testing.F) {
	fuzzVariant(f, harness.VariantBuilder)
}

func FuzzDriver_FlatRecord(f *testing.F) {
	fuzzVariant(f, harness.VariantFlat)
}

func FuzzDriver_FlatRecord_Fixed(f *testing.F) {
	fuzzVariant(f, harness.VariantFlatFixed)
}

func FuzzDriver_FlatRecord_Remainder(f *testing.F) {
	fuzzVariant(f, harness.VariantFlatRemainder)
}
