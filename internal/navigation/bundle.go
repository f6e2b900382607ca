package navigation

// ActivityCodeKey is the bundle key under which the caller's activity code
// travels to the next screen.
const ActivityCodeKey = "activityCode"

// Bundle carries arguments to a screen. A nil Bundle reads as empty.
type Bundle map[string]any

// Put stores v under key and returns b, allocating it if needed.
func (b Bundle) Put(key string, v any) Bundle {
	if b == nil {
		b = Bundle{}
	}
	b[key] = v
	return b
}

func (b Bundle) PutString(key, v string) Bundle {
	return b.Put(key, v)
}

func (b Bundle) PutInt(key string, v int) Bundle {
	return b.Put(key, v)
}

func (b Bundle) PutBool(key string, v bool) Bundle {
	return b.Put(key, v)
}

// String returns the string under key, or "" when absent or of another type.
func (b Bundle) String(key string) string {
	s, _ := b[key].(string)
	return s
}

// Int returns the int under key, or 0.
func (b Bundle) Int(key string) int {
	switch n := b[key].(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	}
	return 0
}

// Bool returns the bool under key, or false.
func (b Bundle) Bool(key string) bool {
	v, _ := b[key].(bool)
	return v
}

func (b Bundle) ActivityCode() int {
	return b.Int(ActivityCodeKey)
}

func (b Bundle) clone() Bundle {
	if len(b) == 0 {
		return nil
	}
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
