package cache

import (
	"sort"
	"strconv"
	"strings"
)

// Prefix names the resource type a cache key belongs to.
type Prefix string

const (
	PrefixProduct    Prefix = "PRODUCT"
	PrefixProducts   Prefix = "PRODUCTS"
	PrefixCategories Prefix = "CATEGORIES"
	PrefixCategory   Prefix = "CATEGORY"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = ":"

// Field is one name=value segment of a cache key.
type Field struct {
	Name  string
	Value string
}

// Key builds a key such as "PRODUCTS:page=1:pages=10:sort=DESC". Fields keep
// the order they are given in, so every caller of one resource type must pass
// the same fields in the same order.
func Key(prefix Prefix, fields ...Field) string {
	var b strings.Builder
	b.WriteString(string(prefix))
	for _, f := range fields {
		b.WriteString(KeySeparator)
		b.WriteString(f.Name)
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	return b.String()
}

func String(name, v string) Field {
	return Field{Name: name, Value: v}
}

// OptString renders a nil pointer as an empty value.
func OptString(name string, v *string) Field {
	if v == nil {
		return Field{Name: name}
	}
	return Field{Name: name, Value: *v}
}

func Int(name string, v int) Field {
	return Field{Name: name, Value: strconv.Itoa(v)}
}

// OptInt renders a nil pointer as "all".
func OptInt(name string, v *int) Field {
	if v == nil {
		return Field{Name: name, Value: "all"}
	}
	return Int(name, *v)
}

func Bool(name string, v bool) Field {
	return Field{Name: name, Value: strconv.FormatBool(v)}
}

// Set renders an unordered set of values, so the same set always yields the
// same key.
func Set(name string, values []string) Field {
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return Field{Name: name, Value: strings.Join(sorted, ",")}
}
