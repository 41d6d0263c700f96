package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"token-service/internal/domain/token"
)

func benchSource(n int) *countingSource {
	tokens := make([]token.Token, n)
	for i := range tokens {
		tokens[i] = token.Token{ID: fmt.Sprintf("token-%d", i), Permissions: []token.Permission{token.PermissionRead}}
	}
	return &countingSource{tokens: tokens}
}

// BenchmarkCacheGet measures cached reads of a 1000 token set
func BenchmarkCacheGet(b *testing.B) {
	p := New(benchSource(1000), time.Hour)
	ctx := context.Background()
	_, _ = p.GetTokens(ctx)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, _ = p.GetTokens(ctx)
	}
}

// BenchmarkCacheGetParallel measures concurrent read performance (contention)
func BenchmarkCacheGetParallel(b *testing.B) {
	p := New(benchSource(1000), time.Hour)
	ctx := context.Background()
	_, _ = p.GetTokens(ctx)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.GetTokens(ctx)
		}
	})
}
