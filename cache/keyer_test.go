package cache

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestKeyer_Deterministic(t *testing.T) {
	keyer := NewDefaultKeyer()
	args := []Arg{String("a"), Int(1), Bool(false), Absent()}

	first := keyer.Key(args)
	for i := 0; i < 100; i++ {
		if got := keyer.Key(args); got != first {
			t.Fatalf("Key() = %q on iteration %d, want %q", got, i, first)
		}
	}
}

func TestKeyer_Format(t *testing.T) {
	keyer := NewDefaultKeyer()
	tests := []struct {
		name string
		args []Arg
		want string
	}{
		{"empty", nil, ""},
		{"string", []Arg{String("hi")}, `(s"hi")`},
		{"quoted string", []Arg{String(`a"b`)}, `(s"a\"b")`},
		{"int", []Arg{Int(-42)}, "(n-42)"},
		{"float", []Arg{Float(1.5)}, "(n1.5)"},
		{"bools", []Arg{Bool(true), Bool(false)}, "(b1)(b0)"},
		{"absent", []Arg{Absent()}, "(u)"},
		{"mixed", []Arg{Int(1), String("x"), Absent()}, `(n1)(s"x")(u)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyer.Key(tt.args); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKeyer_Distinct(t *testing.T) {
	keyer := NewDefaultKeyer()
	lists := [][]Arg{
		{},
		{Int(1)},
		{Int(2)},
		{String("1")},
		{Bool(true)},
		{String("true")},
		{Absent()},
		{String("undefined")},
		{String("")},
		{Int(1), String("x")},
		{Int(1), String("y")},
		{String("a"), String("b")},
		{String("a,b")},
		{String(`a")(s"b`)},
		{String("a)("), String("b")},
		{Absent(), Absent()},
		{Float(math.NaN())},
		{Float(math.Inf(1))},
		{Float(math.Inf(-1))},
		{Float(0.1)},
	}

	seen := make(map[string]int)
	for i, args := range lists {
		key := keyer.Key(args)
		if j, dup := seen[key]; dup {
			t.Errorf("lists %d and %d share key %q", j, i, key)
		}
		seen[key] = i
	}
}

func TestKeyer_NumbersShareOneDomain(t *testing.T) {
	keyer := NewDefaultKeyer()
	tests := []struct {
		name string
		a, b Arg
	}{
		{"int and integral float", Int(1), Float(1.0)},
		{"negative zero", Float(math.Copysign(0, -1)), Int(0)},
		{"uint and int", Uint(7), Int(7)},
		{"largest exact float", Float(1 << 53), Int(1 << 53)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := keyer.Key([]Arg{tt.a})
			kb := keyer.Key([]Arg{tt.b})
			if ka != kb {
				t.Errorf("keys differ: %q vs %q", ka, kb)
			}
		})
	}
}

type userID string

type level uint8

func TestArgOf(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		wantKind Kind
		wantText string
	}{
		{"nil", nil, KindAbsent, "<absent>"},
		{"string", "x", KindString, "x"},
		{"named string", userID("u1"), KindString, "u1"},
		{"bool", true, KindBool, "true"},
		{"int", 3, KindNumber, "3"},
		{"int8", int8(-3), KindNumber, "-3"},
		{"uint64", uint64(math.MaxUint64), KindNumber, "18446744073709551615"},
		{"named uint", level(2), KindNumber, "2"},
		{"float32", float32(0.5), KindNumber, "0.5"},
		{"float64 integral", 2.0, KindNumber, "2"},
		{"arg passthrough", String("y"), KindString, "y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ArgOf(tt.in)
			if err != nil {
				t.Fatalf("ArgOf(%v) error = %v", tt.in, err)
			}
			if a.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", a.Kind(), tt.wantKind)
			}
			if a.String() != tt.wantText {
				t.Errorf("String() = %q, want %q", a.String(), tt.wantText)
			}
		})
	}
}

func TestArgOf_RejectsNonScalars(t *testing.T) {
	inputs := []any{
		[]int{1},
		map[string]any{"a": 1},
		struct{ A int }{1},
		new(int),
		func() {},
	}

	for _, in := range inputs {
		if _, err := ArgOf(in); !errors.Is(err, ErrUnsupportedArg) {
			t.Errorf("ArgOf(%T) error = %v, want ErrUnsupportedArg", in, err)
		}
	}
}

func TestArgs(t *testing.T) {
	args, err := Args("a", 1, nil, true)
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}
	want := `(s"a")(n1)(u)(b1)`
	if got := NewDefaultKeyer().Key(args); got != want {
		t.Errorf("Key(Args(...)) = %q, want %q", got, want)
	}

	_, err = Args("a", []string{"b"})
	if !errors.Is(err, ErrUnsupportedArg) {
		t.Fatalf("Args error = %v, want ErrUnsupportedArg", err)
	}
	if !strings.Contains(err.Error(), "argument 1") {
		t.Errorf("error %q should name the argument position", err)
	}
}

func TestHashKeyer(t *testing.T) {
	keyer := NewHashKeyer(nil)

	k1 := keyer.Key([]Arg{String("a")})
	k2 := keyer.Key([]Arg{String("a")})
	k3 := keyer.Key([]Arg{String("b")})

	if k1 != k2 {
		t.Errorf("hash keys not deterministic: %q vs %q", k1, k2)
	}
	if k1 == k3 {
		t.Errorf("different args share hash key %q", k1)
	}
	if !strings.HasPrefix(k1, "memo:") {
		t.Errorf("key %q missing memo: prefix", k1)
	}
	if len(k1) != len("memo:")+16 {
		t.Errorf("key %q has length %d, want %d", k1, len(k1), len("memo:")+16)
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		KindAbsent: "absent",
		KindString: "string",
		KindNumber: "number",
		KindBool:   "bool",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestArgOf_Float32IsWidened(t *testing.T) {
	keyer := NewDefaultKeyer()
	a, err := ArgOf(float32(0.1))
	if err != nil {
		t.Fatalf("ArgOf failed: %v", err)
	}

	if got := a.String(); got != "0.10000000149011612" {
		t.Errorf("String() = %q, want the widened float64 text", got)
	}
	if keyer.Key([]Arg{a}) == keyer.Key([]Arg{Float(0.1)}) {
		t.Error("float32(0.1) and Float(0.1) should encode differently")
	}
	if keyer.Key([]Arg{a}) != keyer.Key([]Arg{Float(float64(float32(0.1)))}) {
		t.Error("float32(0.1) should encode like its widened float64")
	}
}
