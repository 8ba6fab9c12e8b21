package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type testConfig struct {
	Name string
}

type testProvider struct {
	name      string
	available bool
}

func (p *testProvider) Name() string                        { return p.name }
func (p *testProvider) IsAvailable(ctx context.Context) bool { return p.available }

func newTestProvider(cfg testConfig) (*testProvider, error) {
	return &testProvider{name: cfg.Name, available: true}, nil
}

func TestRegistryRegisterAndCreate(t *testing.T) {
	reg := NewRegistry[testConfig, *testProvider]()
	reg.RegisterFactory("test", newTestProvider)

	p, err := reg.Create("test", testConfig{Name: "ollama"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected name 'ollama', got %q", p.Name())
	}
	if !reg.Has("test") || reg.Has("other") {
		t.Error("Has reported the wrong registrations")
	}
}

func TestRegistryCreateUnregistered(t *testing.T) {
	reg := NewRegistry[testConfig, *testProvider]()
	_, err := reg.Create("missing", testConfig{})
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected 'not registered' error, got %v", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry[testConfig, *testProvider]()
	reg.RegisterFactory("ollama", newTestProvider)
	reg.RegisterFactory("goinfer", newTestProvider)

	names := reg.List()
	if len(names) != 2 || names[0] != "goinfer" || names[1] != "ollama" {
		t.Errorf("expected sorted [goinfer ollama], got %v", names)
	}
}

func TestFromFunc_ReleaseOnExhaustion(t *testing.T) {
	released := 0
	n := 0
	it := FromFunc(func(context.Context) (int, bool, error) {
		n++
		return n, n <= 2, nil
	}, func() error {
		released++
		return nil
	})

	got, err := Collect(context.Background(), it)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 values, got %v", got)
	}
	if released != 1 {
		t.Errorf("expected release exactly once, got %d", released)
	}
	if _, ok, _ := it.Next(context.Background()); ok {
		t.Error("exhausted iterator must stay exhausted")
	}
}

func TestFromFunc_ReleaseOnError(t *testing.T) {
	released := 0
	boom := errors.New("boom")
	it := FromFunc(func(context.Context) (string, bool, error) {
		return "", false, boom
	}, func() error {
		released++
		return nil
	})

	if _, _, err := it.Next(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_ = it.Close()
	if released != 1 {
		t.Errorf("expected release exactly once, got %d", released)
	}
}

func TestFromFunc_EarlyClose(t *testing.T) {
	released := 0
	it := FromFunc(func(context.Context) (int, bool, error) {
		return 1, true, nil
	}, func() error {
		released++
		return nil
	})

	if _, ok, _ := it.Next(context.Background()); !ok {
		t.Fatal("expected a value")
	}
	_ = it.Close()
	_ = it.Close()
	if released != 1 {
		t.Errorf("expected release exactly once, got %d", released)
	}
	if _, ok, _ := it.Next(context.Background()); ok {
		t.Error("closed iterator must not yield")
	}
}

func TestFromFunc_CanceledContext(t *testing.T) {
	released := false
	it := FromFunc(func(context.Context) (int, bool, error) {
		t.Fatal("next must not run with a canceled context")
		return 0, false, nil
	}, func() error {
		released = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := it.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !released {
		t.Error("expected release on cancellation")
	}
}

func TestFromSlice(t *testing.T) {
	got, err := Collect(context.Background(), FromSlice([]string{"a", "b"}))
	if err != nil || len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("unexpected %v %v", got, err)
	}
}
