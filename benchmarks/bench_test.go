package benchmarks

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/bretuobay/bitlog"
)

func openLog(b *testing.B) bitlog.Engine {
	b.Helper()
	opts := bitlog.DefaultOptions(b.TempDir())
	opts.SyncMode = bitlog.SyncManual
	db, err := bitlog.Open(opts)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = db.Close() })
	return db
}

func openBolt(b *testing.B) bitlog.Engine {
	b.Helper()
	engine, err := bitlog.OpenBolt(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = engine.Close() })
	return engine
}

func benchmarkSet(b *testing.B, engine bitlog.Engine) {
	value := string(make([]byte, 100))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := engine.Set(fmt.Sprintf("key-%08d", i), value); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkGet(b *testing.B, engine bitlog.Engine) {
	const keys = 1000
	value := string(make([]byte, 100))
	for i := 0; i < keys; i++ {
		if err := engine.Set(fmt.Sprintf("key-%08d", i), value); err != nil {
			b.Fatal(err)
		}
	}
	rng := rand.New(rand.NewSource(42))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Get(fmt.Sprintf("key-%08d", rng.Intn(keys))); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLogSet(b *testing.B)  { benchmarkSet(b, openLog(b)) }
func BenchmarkBoltSet(b *testing.B) { benchmarkSet(b, openBolt(b)) }
func BenchmarkLogGet(b *testing.B)  { benchmarkGet(b, openLog(b)) }
func BenchmarkBoltGet(b *testing.B) { benchmarkGet(b, openBolt(b)) }
