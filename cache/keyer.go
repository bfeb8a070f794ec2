package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the scalar type of an Arg.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "absent"
	}
}

// maxExactInt is the largest magnitude at which every integer is exactly
// representable as a float64.
const maxExactInt = 1 << 53

// Arg is one scalar argument of a memoized call. The zero Arg is absent.
//
// Numbers are held in canonical text form so that Int(1) and Float(1) are
// the same argument.
type Arg struct {
	kind Kind
	text string
}

// String returns a string argument.
func String(s string) Arg { return Arg{kind: KindString, text: s} }

// Int returns a numeric argument.
func Int(i int64) Arg { return Arg{kind: KindNumber, text: strconv.FormatInt(i, 10)} }

// Uint returns a numeric argument.
func Uint(u uint64) Arg { return Arg{kind: KindNumber, text: strconv.FormatUint(u, 10)} }

// Float returns a numeric argument. Integral values within ±2^53 encode
// exactly like the equal Int; -0 encodes as 0. A float32 is widened first, so
// float32(0.1) encodes as 0.10000000149011612, not as Float(0.1).
func Float(f float64) Arg {
	if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
		return Int(int64(f))
	}
	return Arg{kind: KindNumber, text: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Bool returns a boolean argument.
func Bool(b bool) Arg { return Arg{kind: KindBool, text: strconv.FormatBool(b)} }

// Absent returns the explicit "no value" argument.
func Absent() Arg { return Arg{} }

// Kind reports the argument's scalar type.
func (a Arg) Kind() Kind { return a.kind }

// String returns the argument's textual form.
func (a Arg) String() string {
	if a.kind == KindAbsent {
		return "<absent>"
	}
	return a.text
}

// ArgOf converts a Go scalar to an Arg. nil is absent; named types are
// converted by their underlying kind. Anything else returns ErrUnsupportedArg.
func ArgOf(v any) (Arg, error) {
	switch x := v.(type) {
	case nil:
		return Absent(), nil
	case Arg:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case float64:
		return Float(x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Arg{}, fmt.Errorf("%w: %T", ErrUnsupportedArg, v)
}

// Args converts each value with ArgOf.
func Args(vals ...any) ([]Arg, error) {
	args := make([]Arg, len(vals))
	for i, v := range vals {
		a, err := ArgOf(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = a
	}
	return args, nil
}

// Keyer derives cache keys from argument lists.
//
// Contract:
// - Determinism: equal argument lists must produce equal keys.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(args []Arg) string
}

// DefaultKeyer writes one parenthesised token per argument:
//
//	string  (s"<Go-quoted text>")
//	number  (n<canonical decimal>)
//	bool    (b1) or (b0)
//	absent  (u)
//
// Quoting escapes every '"' inside a string, so each token ends at its first
// unescaped quote and distinct argument lists never share a key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key encodes args. An empty list encodes as the empty string.
func (k *DefaultKeyer) Key(args []Arg) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte('(')
		switch a.kind {
		case KindString:
			b.WriteByte('s')
			b.WriteString(strconv.Quote(a.text))
		case KindNumber:
			b.WriteByte('n')
			b.WriteString(a.text)
		case KindBool:
			if a.text == "true" {
				b.WriteString("b1")
			} else {
				b.WriteString("b0")
			}
		default:
			b.WriteByte('u')
		}
		b.WriteByte(')')
	}
	return b.String()
}

// HashKeyer bounds key length by hashing another Keyer's output.
// Format: memo:<first 16 hex chars of SHA-256>
//
// Truncating the hash gives up strict injectivity; use it only when argument
// text may be very large.
type HashKeyer struct {
	inner Keyer
}

// NewHashKeyer wraps inner, or DefaultKeyer if inner is nil.
func NewHashKeyer(inner Keyer) *HashKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &HashKeyer{inner: inner}
}

// Key hashes the inner key.
func (k *HashKeyer) Key(args []Arg) string {
	return digest(k.inner.Key(args))
}

// digest returns memo:<first 16 hex chars of SHA-256 of key>.
func digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "memo:" + hex.EncodeToString(sum[:8])
}

var (
	_ Keyer = (*DefaultKeyer)(nil)
	_ Keyer = (*HashKeyer)(nil)
)
