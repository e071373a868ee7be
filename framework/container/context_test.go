package container_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/km-arc/go-scoped/framework/container"
)

func TestHasActiveContext(t *testing.T) {
	if container.HasActiveContext(context.Background()) {
		t.Error("background context has no request store")
	}

	_ = container.Run(context.Background(), func(ctx context.Context) error {
		if !container.HasActiveContext(ctx) {
			t.Error("inside Run a request store should be active")
		}
		return nil
	})
}

func TestRunInNewContext_PropagatesResultAndError(t *testing.T) {
	want := errors.New("handler failed")

	got, err := container.RunInNewContext(context.Background(), func(ctx context.Context) (int, error) {
		return 7, want
	})
	if got != 7 || !errors.Is(err, want) {
		t.Errorf("got (%d, %v) want (7, %v)", got, err, want)
	}
}

func TestRunInNewContext_PanicPropagates(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recover: got %v want boom", r)
		}
	}()
	_ = container.Run(context.Background(), func(context.Context) error { panic("boom") })
}

func TestRunInNewContext_NestedExtentsAreStacked(t *testing.T) {
	c := container.New()
	declareUser(t, c)

	_ = container.Run(context.Background(), func(outer context.Context) error {
		outerUser := container.MustMake[*userContext](outer, c)

		inner, _ := container.RunInNewContext(outer, func(ctx context.Context) (*userContext, error) {
			u := container.MustMake[*userContext](ctx, c)
			if u == outerUser {
				t.Error("nested extent should get its own store")
			}
			if _, err := container.MakeQualified[*userContext](ctx, c, "inner-only"); err != nil {
				t.Fatalf("MakeQualified: %v", err)
			}
			return u, nil
		})

		if got := container.MustMake[*userContext](outer, c); got != outerUser || got == inner {
			t.Error("after the inner call returns the outer store is current again")
		}
		if _, ok := container.Lookup[*userContext](outer, c, "inner-only"); ok {
			t.Error("inner entries must not be merged into the outer store")
		}
		return nil
	})
}

func TestRequestScope_SharedWithGoroutines(t *testing.T) {
	c := container.New()
	declareUser(t, c)

	_ = container.Run(context.Background(), func(ctx context.Context) error {
		var wg sync.WaitGroup
		got := make([]*userContext, 8)
		for i := range got {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[i] = container.MustMake[*userContext](ctx, c)
			}()
		}
		wg.Wait()

		for i := range got {
			if got[i] != got[0] {
				t.Fatalf("goroutine %d saw a different request instance", i)
			}
		}
		return nil
	})
}

func TestRequestStore_NilOutsideExtent(t *testing.T) {
	if container.RequestStore(context.Background()) != nil {
		t.Error("RequestStore should be nil outside an extent")
	}
	ctx := container.WithRequestScope(context.Background())
	if container.RequestStore(ctx) == nil {
		t.Error("RequestStore should be set by WithRequestScope")
	}
}
