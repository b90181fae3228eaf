package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/kbukum/composekit/errors"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

type frenchGreeter struct{}

func (frenchGreeter) Greet() string { return "bonjour" }

type counter struct{ n int }

type consumer struct {
	g greeter
	c *counter
}

type closer struct {
	name   string
	closed *[]string
	err    error
}

func (c *closer) Close() error {
	*c.closed = append(*c.closed, c.name)
	return c.err
}

func TestNewContainer(t *testing.T) {
	c := NewContainer()
	if c == nil {
		t.Fatal("expected non-nil container")
	}
	if len(c.Registrations()) != 0 {
		t.Error("expected no registrations")
	}
}

func TestRegisterAndResolve(t *testing.T) {
	c := NewContainer()
	if err := Register[greeter](c, func() greeter { return englishGreeter{} }, Transient); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	g, err := Resolve[greeter](c)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if g.Greet() != "hello" {
		t.Errorf("expected 'hello', got %q", g.Greet())
	}
}

func TestResolveNotRegistered(t *testing.T) {
	c := NewContainer()
	_, err := c.Resolve(TypeOf[greeter]())
	if err == nil {
		t.Fatal("expected error for unregistered component")
	}
	var notFound *ComponentNotFoundError
	if !stderrors.As(err, &notFound) {
		t.Fatalf("expected ComponentNotFoundError, got %T", err)
	}
	if notFound.Service != TypeOf[greeter]() {
		t.Errorf("unexpected service %v", notFound.Service)
	}
	if !apperrors.IsResolutionFailed(err) {
		t.Error("expected error to match ErrResolutionFailed")
	}
}

func TestLifetimes(t *testing.T) {
	tests := []struct {
		name     string
		lifetime Lifetime
		wantSame bool
	}{
		{"transient builds per resolve", Transient, false},
		{"singleton builds once", Singleton, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewContainer()
			calls := 0
			err := Register[*counter](c, func() *counter {
				calls++
				return &counter{n: calls}
			}, tc.lifetime)
			if err != nil {
				t.Fatalf("Register failed: %v", err)
			}

			a := MustResolve[*counter](c)
			b := MustResolve[*counter](c)
			if (a == b) != tc.wantSame {
				t.Errorf("same instance = %v, want %v", a == b, tc.wantSame)
			}
		})
	}
}

func TestSingletonConcurrentResolve(t *testing.T) {
	c := NewContainer()
	var mu sync.Mutex
	calls := 0
	_ = Register[*counter](c, func() *counter {
		mu.Lock()
		calls++
		mu.Unlock()
		return &counter{}
	}, Singleton)

	var wg sync.WaitGroup
	results := make([]*counter, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustResolve[*counter](c)
		}(i)
	}
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected constructor to run once, ran %d times", calls)
	}
	for _, r := range results {
		if r != results[0] {
			t.Fatal("expected all goroutines to get the same instance")
		}
	}
}

func TestAutoWiring(t *testing.T) {
	c := NewContainer()
	_ = Register[greeter](c, func() greeter { return englishGreeter{} }, Singleton)
	_ = Register[*counter](c, func() *counter { return &counter{n: 7} }, Singleton)
	err := Register[*consumer](c, func(ctx context.Context, g greeter, n *counter) (*consumer, error) {
		if ctx == nil {
			return nil, fmt.Errorf("missing context")
		}
		return &consumer{g: g, c: n}, nil
	}, Transient)
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got := MustResolve[*consumer](c)
	if got.g.Greet() != "hello" || got.c.n != 7 {
		t.Errorf("unexpected wiring: %+v", got)
	}
	if got.c != MustResolve[*counter](c) {
		t.Error("expected singleton dependency to be shared")
	}
}

func TestMissingDependency(t *testing.T) {
	c := NewContainer()
	_ = Register[*consumer](c, func(g greeter) *consumer { return &consumer{g: g} }, Transient)

	_, err := Resolve[*consumer](c)
	var resErr *ResolutionError
	if !stderrors.As(err, &resErr) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
	var notFound *ComponentNotFoundError
	if !stderrors.As(err, &notFound) || notFound.Service != TypeOf[greeter]() {
		t.Errorf("expected wrapped ComponentNotFoundError for greeter, got %v", err)
	}
}

func TestConstructorError(t *testing.T) {
	c := NewContainer()
	boom := fmt.Errorf("boom")
	_ = Register[greeter](c, func() (greeter, error) { return nil, boom }, Singleton)

	_, err := Resolve[greeter](c)
	var initErr *InitializationError
	if !stderrors.As(err, &initErr) {
		t.Fatalf("expected InitializationError, got %v", err)
	}
	if !stderrors.Is(err, boom) {
		t.Error("expected constructor error to be wrapped")
	}
	if c.Registrations()[0].Initialized {
		t.Error("failed singleton should not be marked initialized")
	}
}

type nodeA struct{}
type nodeB struct{}

func TestCircularDependency(t *testing.T) {
	c := NewContainer()
	_ = Register[*nodeA](c, func(*nodeB) *nodeA { return &nodeA{} }, Singleton)
	_ = Register[*nodeB](c, func(*nodeA) *nodeB { return &nodeB{} }, Singleton)

	_, err := Resolve[*nodeA](c)
	var cycle *CircularDependencyError
	if !stderrors.As(err, &cycle) {
		t.Fatalf("expected CircularDependencyError, got %v", err)
	}
	if len(cycle.Path) != 3 || cycle.Path[0] != TypeOf[*nodeA]() || cycle.Path[2] != TypeOf[*nodeA]() {
		t.Errorf("unexpected cycle path: %v", cycle.Path)
	}
}

func TestNamedRegistrations(t *testing.T) {
	c := NewContainer()
	_ = Register[greeter](c, func() greeter { return englishGreeter{} }, Singleton, WithName("en"))
	_ = Register[greeter](c, func() greeter { return frenchGreeter{} }, Singleton, WithName("fr"))

	fr, err := ResolveNamed[greeter](c, "fr")
	if err != nil {
		t.Fatalf("ResolveNamed failed: %v", err)
	}
	if fr.Greet() != "bonjour" {
		t.Errorf("expected 'bonjour', got %q", fr.Greet())
	}

	// The first binding is the default.
	if MustResolve[greeter](c).Greet() != "hello" {
		t.Error("expected first registration to be the default")
	}

	if !c.HasNamedRegistration(TypeOf[greeter](), "en") {
		t.Error("expected named registration 'en'")
	}
	if c.HasNamedRegistration(TypeOf[greeter](), "de") {
		t.Error("did not expect named registration 'de'")
	}

	_, err = ResolveNamed[greeter](c, "de")
	var notFound *ComponentNotFoundError
	if !stderrors.As(err, &notFound) || notFound.Name != "de" {
		t.Errorf("expected ComponentNotFoundError for 'de', got %v", err)
	}
}

func TestDefaultNameIsImplementationType(t *testing.T) {
	c := NewContainer()
	_ = Register[greeter](c, func() englishGreeter { return englishGreeter{} }, Transient)

	regs := c.Registrations()
	if len(regs) != 1 || regs[0].Name != "di.englishGreeter" {
		t.Fatalf("unexpected registrations: %+v", regs)
	}
	if !c.HasNamedRegistration(TypeOf[greeter](), "di.englishGreeter") {
		t.Error("expected binding under implementation type name")
	}
}

func TestDuplicateRegistration(t *testing.T) {
	c := NewContainer()
	_ = Register[greeter](c, func() greeter { return englishGreeter{} }, Singleton, WithName("en"))
	err := Register[greeter](c, func() greeter { return frenchGreeter{} }, Singleton, WithName("en"))

	var dup *DuplicateRegistrationError
	if !stderrors.As(err, &dup) {
		t.Fatalf("expected DuplicateRegistrationError, got %v", err)
	}
}

func TestResolveAllOrder(t *testing.T) {
	c := NewContainer()
	_ = Register[greeter](c, func() greeter { return frenchGreeter{} }, Transient, WithName("fr"))
	_ = RegisterInstance[greeter](c, englishGreeter{}, WithName("en"))

	all, err := ResolveAll[greeter](c)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(all) != 2 || all[0].Greet() != "bonjour" || all[1].Greet() != "hello" {
		t.Errorf("unexpected order: %v", all)
	}

	none, err := c.ResolveAll(TypeOf[*counter]())
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestRegisterInstance(t *testing.T) {
	c := NewContainer()
	want := &counter{n: 3}
	if err := RegisterInstance(c, want); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}
	if MustResolve[*counter](c) != want {
		t.Error("expected the registered instance")
	}
	if !c.HasRegistration(TypeOf[*counter]()) {
		t.Error("expected HasRegistration to be true")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		fn   func(c Container) error
	}{
		{"nil service", func(c Container) error { return c.Register(nil, func() int { return 1 }, Transient) }},
		{"nil constructor", func(c Container) error { return c.Register(TypeOf[greeter](), nil, Transient) }},
		{"not a function", func(c Container) error { return c.Register(TypeOf[greeter](), 42, Transient) }},
		{"bad second result", func(c Container) error {
			return c.Register(TypeOf[greeter](), func() (greeter, int) { return nil, 0 }, Transient)
		}},
		{"not assignable", func(c Container) error {
			return c.Register(TypeOf[greeter](), func() *counter { return nil }, Transient)
		}},
		{"nil instance", func(c Container) error { return c.RegisterInstance(TypeOf[*counter](), (*counter)(nil)) }},
		{"instance not assignable", func(c Container) error { return c.RegisterInstance(TypeOf[greeter](), &counter{}) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fn(NewContainer())
			if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestTryResolve(t *testing.T) {
	c := NewContainer()
	if _, ok := TryResolve[greeter](c); ok {
		t.Error("expected TryResolve to fail for missing binding")
	}
	_ = RegisterInstance[greeter](c, englishGreeter{})
	if g, ok := TryResolve[greeter](c); !ok || g.Greet() != "hello" {
		t.Error("expected TryResolve to succeed")
	}
}

func TestMustResolvePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing binding")
		}
	}()
	MustResolve[greeter](NewContainer())
}

func TestCloseReverseCreationOrder(t *testing.T) {
	c := NewContainer()
	var closed []string
	external := &closer{name: "external", closed: &closed}
	_ = c.RegisterInstance(TypeOf[*closer](), external, WithName("external"))
	_ = c.Register(TypeOf[*closer](), func() *closer { return &closer{name: "first", closed: &closed} }, Singleton, WithName("first"))
	_ = c.Register(TypeOf[*closer](), func() *closer {
		return &closer{name: "second", closed: &closed, err: fmt.Errorf("close failed")}
	}, Singleton, WithName("second"))

	_, _ = c.ResolveNamed(TypeOf[*closer](), "first")
	_, _ = c.ResolveNamed(TypeOf[*closer](), "second")

	err := c.Close()
	if err == nil {
		t.Error("expected close error to be reported")
	}
	if len(closed) != 2 || closed[0] != "second" || closed[1] != "first" {
		t.Errorf("unexpected close order: %v", closed)
	}
}
