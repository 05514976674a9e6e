package csvio

import (
	"path/filepath"
	"testing"
)

func BenchmarkLoad(b *testing.B) {
	p := filepath.Join(b.TempDir(), "bench.csv")
	if err := WriteAll(p, sampleFrame(5000), WriterOptions{}); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		fr, err := Load(p, ReaderOptions{})
		if err != nil {
			b.Fatal(err)
		}
		if fr.Rows() == 0 {
			b.Fatal("no rows")
		}
	}
}
