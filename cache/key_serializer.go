package cache

import (
	"fmt"
	"strings"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// defaultKeySerializer joins the method and its arguments with KeySeparator.
// Arguments are rendered with fmt, and any separator inside an argument is
// escaped so that ("a::b") and ("a", "b") never collide.
type defaultKeySerializer struct {
	namespace string
}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// NewNamespacedKeySerializer prefixes every key with namespace, so several
// stores can share one CacheService.
func NewNamespacedKeySerializer(namespace string) KeySerializer {
	return &defaultKeySerializer{namespace: namespace}
}

// SerializeKey builds a cache key from method name and args.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	parts := make([]string, 0, len(args)+2)
	if s.namespace != "" {
		parts = append(parts, escapeSegment(s.namespace))
	}
	parts = append(parts, escapeSegment(method))

	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	return strings.Join(parts, KeySeparator)
}

func (s *defaultKeySerializer) serializeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return escapeSegment(val)
	case fmt.Stringer:
		return escapeSegment(val.String())
	default:
		return escapeSegment(fmt.Sprintf("%v", val))
	}
}

var segmentEscaper = strings.NewReplacer(`\`, `\\`, ":", `\:`)

func escapeSegment(s string) string {
	return segmentEscaper.Replace(s)
}
