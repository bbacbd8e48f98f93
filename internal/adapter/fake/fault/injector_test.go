package fault

import (
	"errors"
	"testing"
)

const testPoint = "steps_store.add_step"

func TestInjectorFailOnce(t *testing.T) {
	i := NewInjector()
	injected := errors.New("injected once")
	i.FailOnce(testPoint, injected)

	err := i.Eval(testPoint)
	if !errors.Is(err, injected) {
		t.Fatalf("first Eval error = %v, want %v", err, injected)
	}

	err = i.Eval(testPoint)
	if err != nil {
		t.Fatalf("second Eval error = %v, want nil", err)
	}
}

func TestInjectorFailOnceQueue(t *testing.T) {
	i := NewInjector()
	first := errors.New("first")
	second := errors.New("second")
	i.FailOnce(testPoint, first)
	i.FailOnce(testPoint, second)

	if err := i.Eval(testPoint); !errors.Is(err, first) {
		t.Fatalf("Eval 1 error = %v, want %v", err, first)
	}
	if err := i.Eval(testPoint); !errors.Is(err, second) {
		t.Fatalf("Eval 2 error = %v, want %v", err, second)
	}
	if err := i.Eval(testPoint); err != nil {
		t.Fatalf("Eval 3 error = %v, want nil", err)
	}
}

func TestInjectorFailAlways(t *testing.T) {
	i := NewInjector()
	injected := errors.New("injected always")
	i.FailAlways(testPoint, injected)

	err := i.Eval(testPoint)
	if !errors.Is(err, injected) {
		t.Fatalf("first Eval error = %v, want %v", err, injected)
	}

	err = i.Eval(testPoint)
	if !errors.Is(err, injected) {
		t.Fatalf("second Eval error = %v, want %v", err, injected)
	}
}

func TestInjectorHook(t *testing.T) {
	i := NewInjector()
	injected := errors.New("bad step")
	i.SetHook(testPoint, func(args ...any) error {
		if len(args) < 2 {
			return nil
		}
		id, _ := args[1].(int64)
		if id == 101 {
			return injected
		}
		return nil
	})

	err := i.Eval(testPoint, nil, int64(101))
	if !errors.Is(err, injected) {
		t.Fatalf("Eval 101 error = %v, want %v", err, injected)
	}

	err = i.Eval(testPoint, nil, int64(100))
	if err != nil {
		t.Fatalf("Eval 100 error = %v, want nil", err)
	}
}

func TestInjectorClearAndReset(t *testing.T) {
	i := NewInjector()
	one := errors.New("one")
	two := errors.New("two")
	i.FailAlways("a", one)
	i.FailAlways("b", two)

	i.Clear("a")
	err := i.Eval("a")
	if err != nil {
		t.Fatalf("Eval a after Clear = %v, want nil", err)
	}

	err = i.Eval("b")
	if !errors.Is(err, two) {
		t.Fatalf("Eval b before Reset = %v, want %v", err, two)
	}

	i.Reset()
	err = i.Eval("b")
	if err != nil {
		t.Fatalf("Eval b after Reset = %v, want nil", err)
	}
}
