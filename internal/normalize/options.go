package normalize

// optionKeys is the fixed lookup order for letter-keyed option objects.
var optionKeys = []string{"A", "B", "C", "D", "E", "F"}

// NormalizeOptions flattens an options value into an ordered list.
//
// Arrays keep their order. Objects are read by the keys A–F; when none of
// those keys is set the object's values are used in key order. Anything else,
// including nil, yields an empty list.
func NormalizeOptions(v any) []string {
	if !Truthy(v) {
		return []string{}
	}

	switch t := v.(type) {
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, len(t))
		for i, el := range t {
			out[i] = Stringify(el)
		}
		return out
	}

	obj, ok := asObject(v)
	if !ok {
		return []string{}
	}

	out := []string{}
	for _, key := range optionKeys {
		if val, _ := obj.Get(key); Truthy(val) {
			out = append(out, Stringify(val))
		}
	}
	if len(out) > 0 {
		return out
	}

	for _, val := range obj.Values() {
		out = append(out, Stringify(val))
	}
	return out
}

// NormalizeOptionsJSON decodes raw JSON and normalizes it. Undecodable input
// is treated like a missing value.
func NormalizeOptionsJSON(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	v, err := Decode(raw)
	if err != nil {
		return []string{}
	}
	return NormalizeOptions(v)
}
