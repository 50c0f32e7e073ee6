package primitive

import (
	"strconv"
	"strings"

	"github.com/born-ml/primcache/internal/tensor"
)

// Key identifies a cached primitive. Family names the operation kind and
// Params holds the encoded parameters; both fields take part in equality.
//
// Params is written by KeyBuilder, which prefixes every shape with its rank
// and separates every field, so two distinct parameter tuples never encode
// to the same Params string.
type Key struct {
	Family string
	Params string
}

// String returns the key in "<family><params>" form.
func (k Key) String() string {
	return k.Family + k.Params
}

// flightKey is an unambiguous single-string form of k. String alone is not:
// {"f1", "2"} and {"f", "12"} both print "f12".
func (k Key) flightKey() string {
	return strconv.Itoa(len(k.Family)) + "#" + k.Family + k.Params
}

// KeyBuilder accumulates primitive parameters into a Key.
type KeyBuilder struct {
	family string
	sb     strings.Builder
	fields int
}

// NewKeyBuilder starts a key for the given operation family.
func NewKeyBuilder(family string) *KeyBuilder {
	return &KeyBuilder{family: family}
}

func (b *KeyBuilder) sep() {
	if b.fields > 0 {
		b.sb.WriteByte('|')
	}
	b.fields++
}

// Shape appends a shape as "<rank>:<d0>,<d1>,...".
func (b *KeyBuilder) Shape(s tensor.Shape) *KeyBuilder {
	b.sep()
	b.sb.WriteString(strconv.Itoa(len(s)))
	b.sb.WriteByte(':')
	for i, d := range s {
		if i > 0 {
			b.sb.WriteByte(',')
		}
		b.sb.WriteString(strconv.Itoa(d))
	}
	return b
}

// Int appends scalar integers, one field each.
func (b *KeyBuilder) Int(values ...int) *KeyBuilder {
	for _, v := range values {
		b.sep()
		b.sb.WriteString(strconv.Itoa(v))
	}
	return b
}

// Text appends a length-prefixed string field.
func (b *KeyBuilder) Text(s string) *KeyBuilder {
	b.sep()
	b.sb.WriteString(strconv.Itoa(len(s)))
	b.sb.WriteByte('#')
	b.sb.WriteString(s)
	return b
}

// Build returns the finished key.
func (b *KeyBuilder) Build() Key {
	return Key{Family: b.family, Params: b.sb.String()}
}
