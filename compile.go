package skemacore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reoring/skemacore/codec"
)

// compiler walks a schema description by recursive descent, dispatching on
// each node's "type" tag. It threads a description path so every
// SchemaError names the offending node; the first defect aborts the whole
// compilation and no partially compiled tree escapes.
type compiler struct {
	defs        *definitions
	transforms  map[string]TransformFunc
	serializers map[string]FieldSerializerFunc
	path        []string
}

func (c *compiler) push(seg string) { c.path = append(c.path, seg) }
func (c *compiler) pop()            { c.path = c.path[:len(c.path)-1] }

func (c *compiler) pointer() string {
	if len(c.path) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range c.path {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(seg))
	}
	return b.String()
}

func (c *compiler) defect(defect, format string, args ...any) error {
	return &SchemaError{Path: c.pointer(), Defect: defect, Message: fmt.Sprintf(format, args...)}
}

// compileRoot handles the top level: either a bare node or the envelope
// {"schema": <node>, "definitions": [{"ref": id, "schema": <node>}, ...]}.
func (c *compiler) compileRoot(desc any) (node, error) {
	m, ok := desc.(map[string]any)
	if !ok {
		return nil, c.defect(DefectBadDescription, "schema description must be a mapping, got %s", typeName(desc))
	}
	if _, hasType := m["type"]; hasType {
		return c.compileNode(m)
	}
	rawDefs, ok := m["definitions"].([]any)
	if m["definitions"] != nil && !ok {
		c.push("definitions")
		defer c.pop()
		return nil, c.defect(DefectBadDescription, "definitions must be a sequence")
	}
	c.push("definitions")
	for i, rd := range rawDefs {
		c.push(strconv.Itoa(i))
		dm, ok := rd.(map[string]any)
		if !ok {
			return nil, c.defect(DefectBadDescription, "definition entry must be a mapping")
		}
		id, ok := dm["ref"].(string)
		if !ok || id == "" {
			return nil, c.defect(DefectMissingField, "definition entry requires a non-empty \"ref\"")
		}
		c.push("schema")
		dn, err := c.compileNode(dm["schema"])
		if err != nil {
			return nil, err
		}
		c.pop()
		if !c.defs.add(id, dn) {
			return nil, c.defect(DefectDuplicateDefinition, "definition id %q declared twice", id)
		}
		c.pop()
	}
	c.pop()
	root, hasRoot := m["schema"]
	if !hasRoot {
		return nil, c.defect(DefectMissingField, "envelope requires a \"schema\" node")
	}
	c.push("schema")
	defer c.pop()
	return c.compileNode(root)
}

func (c *compiler) compileNode(desc any) (node, error) {
	m, ok := desc.(map[string]any)
	if !ok {
		return nil, c.defect(DefectBadDescription, "schema node must be a mapping, got %s", typeName(desc))
	}
	tag, ok := m["type"].(string)
	if !ok || tag == "" {
		return nil, c.defect(DefectMissingField, "schema node requires a \"type\" tag")
	}
	switch tag {
	case "any":
		return &anyNode{}, nil
	case "none":
		return &noneNode{}, nil
	case "bool":
		return &boolNode{strict: c.strictFlag(m)}, nil
	case "int":
		return c.compileInt(m)
	case "float":
		return c.compileFloat(m)
	case "str":
		return c.compileStr(m)
	case "bytes":
		return c.compileBytes(m)
	case "literal":
		return c.compileLiteral(m)
	case "datetime":
		return c.compileDatetime(m)
	case "date":
		return &dateNode{strict: c.strictFlag(m)}, nil
	case "time":
		return &timeNode{strict: c.strictFlag(m)}, nil
	case "duration":
		return &durationNode{strict: c.strictFlag(m)}, nil
	case "uuid":
		return &uuidNode{strict: c.strictFlag(m)}, nil
	case "url":
		return &urlNode{strict: c.strictFlag(m)}, nil
	case "list":
		return c.compileList(m)
	case "tuple":
		return c.compileTuple(m)
	case "set":
		return c.compileSet(m)
	case "dict":
		return c.compileDict(m)
	case "model":
		return c.compileModel(m)
	case "union":
		return c.compileUnion(m)
	case "tagged_union":
		return c.compileTaggedUnion(m)
	case "definition-ref":
		id, ok := m["schema_ref"].(string)
		if !ok || id == "" {
			return nil, c.defect(DefectMissingField, "definition-ref requires a non-empty \"schema_ref\"")
		}
		return &refNode{id: id}, nil
	case "nullable":
		inner, err := c.compileChild(m, "schema")
		if err != nil {
			return nil, err
		}
		return &nullableNode{inner: inner}, nil
	case "mode":
		return c.compileMode(m)
	case "transform":
		return c.compileTransform(m)
	case "json-or-native":
		return c.compileJSONOrNative(m)
	default:
		return nil, c.defect(DefectUnknownType, "unknown schema type %q", tag)
	}
}

// compileChild compiles the sub-schema stored under key, extending the
// description path.
func (c *compiler) compileChild(m map[string]any, key string) (node, error) {
	raw, ok := m[key]
	if !ok {
		return nil, c.defect(DefectMissingField, "%s node requires %q", m["type"], key)
	}
	c.push(key)
	defer c.pop()
	return c.compileNode(raw)
}

func (c *compiler) compileInt(m map[string]any) (node, error) {
	n := &intNode{strict: c.strictFlag(m)}
	var err error
	if n.ge, err = c.int64Field(m, "ge"); err != nil {
		return nil, err
	}
	if n.gt, err = c.int64Field(m, "gt"); err != nil {
		return nil, err
	}
	if n.le, err = c.int64Field(m, "le"); err != nil {
		return nil, err
	}
	if n.lt, err = c.int64Field(m, "lt"); err != nil {
		return nil, err
	}
	if n.multipleOf, err = c.int64Field(m, "multiple_of"); err != nil {
		return nil, err
	}
	if n.multipleOf != nil && *n.multipleOf <= 0 {
		return nil, c.defect(DefectBadConstraint, "multiple_of must be positive, got %d", *n.multipleOf)
	}
	if n.ge != nil && n.le != nil && *n.ge > *n.le {
		return nil, c.defect(DefectBadConstraint, "ge (%d) exceeds le (%d)", *n.ge, *n.le)
	}
	if n.gt != nil && n.lt != nil && *n.gt >= *n.lt {
		return nil, c.defect(DefectBadConstraint, "gt (%d) must be below lt (%d)", *n.gt, *n.lt)
	}
	return n, nil
}

func (c *compiler) compileFloat(m map[string]any) (node, error) {
	n := &floatNode{strict: c.strictFlag(m)}
	var err error
	if n.ge, err = c.float64Field(m, "ge"); err != nil {
		return nil, err
	}
	if n.gt, err = c.float64Field(m, "gt"); err != nil {
		return nil, err
	}
	if n.le, err = c.float64Field(m, "le"); err != nil {
		return nil, err
	}
	if n.lt, err = c.float64Field(m, "lt"); err != nil {
		return nil, err
	}
	if n.multipleOf, err = c.float64Field(m, "multiple_of"); err != nil {
		return nil, err
	}
	if n.multipleOf != nil && *n.multipleOf <= 0 {
		return nil, c.defect(DefectBadConstraint, "multiple_of must be positive, got %v", *n.multipleOf)
	}
	if b, ok := m["allow_inf_nan"].(bool); ok {
		n.allowInfNan = b
	}
	if n.ge != nil && n.le != nil && *n.ge > *n.le {
		return nil, c.defect(DefectBadConstraint, "ge (%v) exceeds le (%v)", *n.ge, *n.le)
	}
	if n.gt != nil && n.lt != nil && *n.gt >= *n.lt {
		return nil, c.defect(DefectBadConstraint, "gt (%v) must be below lt (%v)", *n.gt, *n.lt)
	}
	return n, nil
}

func (c *compiler) compileStr(m map[string]any) (node, error) {
	n := &strNode{strict: c.strictFlag(m), minLen: -1, maxLen: -1}
	minLen, maxLen, err := c.lengthBounds(m)
	if err != nil {
		return nil, err
	}
	n.minLen, n.maxLen = minLen, maxLen
	if raw, ok := m["pattern"]; ok {
		src, ok := raw.(string)
		if !ok {
			return nil, c.defect(DefectBadConstraint, "pattern must be a string")
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, c.defect(DefectBadConstraint, "invalid pattern %q: %v", src, err)
		}
		n.pattern, n.patternSrc = re, src
	}
	n.strip, _ = m["strip_whitespace"].(bool)
	n.toLower, _ = m["to_lower"].(bool)
	n.toUpper, _ = m["to_upper"].(bool)
	if n.toLower && n.toUpper {
		return nil, c.defect(DefectBadConstraint, "to_lower and to_upper are mutually exclusive")
	}
	return n, nil
}

func (c *compiler) compileBytes(m map[string]any) (node, error) {
	minLen, maxLen, err := c.lengthBounds(m)
	if err != nil {
		return nil, err
	}
	return &bytesNode{strict: c.strictFlag(m), minLen: minLen, maxLen: maxLen}, nil
}

func (c *compiler) compileLiteral(m map[string]any) (node, error) {
	raw, ok := m["expected"].([]any)
	if !ok || len(raw) == 0 {
		return nil, c.defect(DefectMissingField, "literal requires a non-empty \"expected\" sequence")
	}
	n := &literalNode{keys: make(map[any]struct{}, len(raw))}
	display := make([]string, 0, len(raw))
	for i, rv := range raw {
		v := normalizeDescScalar(rv)
		switch v.(type) {
		case nil, bool, int64, string:
		default:
			c.push("expected")
			c.push(strconv.Itoa(i))
			return nil, c.defect(DefectBadConstraint, "literal members must be null, boolean, integer or string, got %s", typeName(rv))
		}
		if _, dup := n.keys[v]; dup {
			continue
		}
		n.keys[v] = struct{}{}
		n.expected = append(n.expected, v)
		display = append(display, literalDisplay(v))
	}
	if len(display) == 1 {
		n.display = display[0]
	} else {
		n.display = strings.Join(display[:len(display)-1], ", ") + " or " + display[len(display)-1]
	}
	return n, nil
}

func literalDisplay(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + t + "'"
	default:
		return fmt.Sprint(t)
	}
}

func (c *compiler) compileDatetime(m map[string]any) (node, error) {
	n := &datetimeNode{strict: c.strictFlag(m)}
	parse := func(key string) (*time.Time, error) {
		raw, ok := m[key]
		if !ok {
			return nil, nil
		}
		s, ok := raw.(string)
		if !ok {
			return nil, c.defect(DefectBadConstraint, "%s must be an RFC 3339 string", key)
		}
		t, err := codec.ParseDateTime(s)
		if err != nil {
			return nil, c.defect(DefectBadConstraint, "%s is not a valid RFC 3339 timestamp: %q", key, s)
		}
		return &t, nil
	}
	var err error
	if n.after, err = parse("gt"); err != nil {
		return nil, err
	}
	if n.before, err = parse("lt"); err != nil {
		return nil, err
	}
	if n.after != nil && n.before != nil && !n.after.Before(*n.before) {
		return nil, c.defect(DefectBadConstraint, "gt must be before lt")
	}
	return n, nil
}

func (c *compiler) compileList(m map[string]any) (node, error) {
	items, err := c.compileChild(m, "items_schema")
	if err != nil {
		return nil, err
	}
	minLen, maxLen, err := c.lengthBounds(m)
	if err != nil {
		return nil, err
	}
	return &listNode{items: items, minLen: minLen, maxLen: maxLen}, nil
}

func (c *compiler) compileTuple(m map[string]any) (node, error) {
	raw, ok := m["items_schemas"].([]any)
	if !ok {
		return nil, c.defect(DefectMissingField, "tuple requires an \"items_schemas\" sequence")
	}
	n := &tupleNode{items: make([]node, 0, len(raw))}
	c.push("items_schemas")
	for i, rd := range raw {
		c.push(strconv.Itoa(i))
		item, err := c.compileNode(rd)
		if err != nil {
			return nil, err
		}
		c.pop()
		n.items = append(n.items, item)
	}
	c.pop()
	return n, nil
}

func (c *compiler) compileSet(m map[string]any) (node, error) {
	items, err := c.compileChild(m, "items_schema")
	if err != nil {
		return nil, err
	}
	minLen, maxLen, err := c.lengthBounds(m)
	if err != nil {
		return nil, err
	}
	return &setNode{items: items, minLen: minLen, maxLen: maxLen}, nil
}

func (c *compiler) compileDict(m map[string]any) (node, error) {
	values, err := c.compileChild(m, "values_schema")
	if err != nil {
		return nil, err
	}
	n := &dictNode{values: values}
	if _, ok := m["keys_schema"]; ok {
		if n.keys, err = c.compileChild(m, "keys_schema"); err != nil {
			return nil, err
		}
	}
	if n.minLen, n.maxLen, err = c.lengthBounds(m); err != nil {
		return nil, err
	}
	return n, nil
}

func (c *compiler) compileModel(m map[string]any) (node, error) {
	raw, ok := m["fields"].([]any)
	if !ok {
		return nil, c.defect(DefectMissingField, "model requires a \"fields\" sequence")
	}
	n := &modelNode{
		fields: make([]modelField, 0, len(raw)),
		known:  make(map[string]int, len(raw)),
		byName: make(map[string]int, len(raw)),
	}
	switch eb, _ := m["extra_behavior"].(string); eb {
	case "", "ignore":
		n.extra = ExtraIgnore
	case "forbid":
		n.extra = ExtraForbid
	case "allow":
		n.extra = ExtraAllow
	default:
		return nil, c.defect(DefectBadConstraint, "extra_behavior must be ignore, forbid or allow")
	}
	c.push("fields")
	for i, rf := range raw {
		c.push(strconv.Itoa(i))
		fm, ok := rf.(map[string]any)
		if !ok {
			return nil, c.defect(DefectBadDescription, "model field must be a mapping")
		}
		f := modelField{required: true}
		if f.name, ok = fm["name"].(string); !ok || f.name == "" {
			return nil, c.defect(DefectMissingField, "model field requires a non-empty \"name\"")
		}
		if r, ok := fm["required"].(bool); ok {
			f.required = r
		}
		f.alias, _ = fm["alias"].(string)
		if raw, ok := fm["default"]; ok {
			def, err := c.normalizeDefault(raw)
			if err != nil {
				return nil, err
			}
			f.def, f.hasDefault = def, true
			f.required = false
		}
		if sn, ok := fm["serializer"].(string); ok && sn != "" {
			fn, known := c.serializers[sn]
			if !known {
				return nil, c.defect(DefectUnknownSerializer, "field serializer %q is not registered", sn)
			}
			f.serializer, f.serName = fn, sn
		}
		var err error
		if f.schema, err = c.compileChild(fm, "schema"); err != nil {
			return nil, err
		}
		if _, dup := n.byName[f.name]; dup {
			return nil, c.defect(DefectDuplicateField, "field name %q declared twice", f.name)
		}
		if _, dup := n.known[f.inputKey()]; dup {
			return nil, c.defect(DefectDuplicateField, "input key %q used by two fields", f.inputKey())
		}
		idx := len(n.fields)
		n.fields = append(n.fields, f)
		n.byName[f.name] = idx
		n.known[f.inputKey()] = idx
		c.pop()
	}
	c.pop()
	return n, nil
}

func (c *compiler) compileUnion(m map[string]any) (node, error) {
	raw, ok := m["choices"].([]any)
	if !ok || len(raw) == 0 {
		return nil, c.defect(DefectEmptyUnion, "union requires a non-empty \"choices\" sequence")
	}
	n := &unionNode{choices: make([]node, 0, len(raw))}
	switch um, _ := m["mode"].(string); um {
	case "", "smart":
		n.mode = UnionSmart
	case "left_to_right":
		n.mode = UnionLeftToRight
	default:
		return nil, c.defect(DefectBadConstraint, "union mode must be smart or left_to_right")
	}
	c.push("choices")
	for i, rd := range raw {
		c.push(strconv.Itoa(i))
		alt, err := c.compileNode(rd)
		if err != nil {
			return nil, err
		}
		c.pop()
		n.choices = append(n.choices, alt)
	}
	c.pop()
	return n, nil
}

func (c *compiler) compileTaggedUnion(m map[string]any) (node, error) {
	disc, ok := m["discriminator"].(string)
	if !ok || disc == "" {
		return nil, c.defect(DefectMissingField, "tagged_union requires a non-empty \"discriminator\"")
	}
	raw, ok := m["choices"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, c.defect(DefectEmptyUnion, "tagged_union requires a non-empty \"choices\" mapping")
	}
	n := &taggedUnionNode{discriminator: disc, choices: make(map[string]node, len(raw))}
	c.push("choices")
	for _, tag := range sortedKeys(raw) {
		c.push(tag)
		alt, err := c.compileNode(raw[tag])
		if err != nil {
			return nil, err
		}
		c.pop()
		n.choices[tag] = alt
		n.tags = append(n.tags, tag)
	}
	c.pop()
	return n, nil
}

func (c *compiler) compileMode(m map[string]any) (node, error) {
	inner, err := c.compileChild(m, "schema")
	if err != nil {
		return nil, err
	}
	switch md, _ := m["mode"].(string); md {
	case "strict":
		return &modeNode{mode: ModeStrict, inner: inner}, nil
	case "lax":
		return &modeNode{mode: ModeLax, inner: inner}, nil
	default:
		return nil, c.defect(DefectBadConstraint, "mode wrapper requires mode strict or lax")
	}
}

func (c *compiler) compileTransform(m map[string]any) (node, error) {
	name, ok := m["transform"].(string)
	if !ok || name == "" {
		return nil, c.defect(DefectMissingField, "transform node requires a \"transform\" name")
	}
	fn, known := c.transforms[name]
	if !known {
		return nil, c.defect(DefectUnknownTransform, "transform %q is not registered", name)
	}
	n := &transformNode{name: name, fn: fn}
	switch when, _ := m["when"].(string); when {
	case "", "before":
		n.before = true
	case "after":
	default:
		return nil, c.defect(DefectBadConstraint, "transform \"when\" must be before or after")
	}
	var err error
	if n.inner, err = c.compileChild(m, "schema"); err != nil {
		return nil, err
	}
	return n, nil
}

func (c *compiler) compileJSONOrNative(m map[string]any) (node, error) {
	jsonChild, err := c.compileChild(m, "json_schema")
	if err != nil {
		return nil, err
	}
	nativeChild, err := c.compileChild(m, "native_schema")
	if err != nil {
		return nil, err
	}
	return &jsonOrNativeNode{jsonChild: jsonChild, nativeChild: nativeChild}, nil
}

// ---- description field readers ----

func (c *compiler) strictFlag(m map[string]any) *bool {
	if b, ok := m["strict"].(bool); ok {
		return &b
	}
	return nil
}

func (c *compiler) int64Field(m map[string]any, key string) (*int64, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	switch t := raw.(type) {
	case int:
		v := int64(t)
		return &v, nil
	case int64:
		return &t, nil
	case uint64:
		v := int64(t)
		return &v, nil
	case float64:
		i, reason := intFromFloat(t)
		if reason != "" {
			return nil, c.defect(DefectBadConstraint, "%s must be an integer, got %v", key, t)
		}
		return &i, nil
	case json.Number:
		i, err := t.Int64()
		if err != nil {
			return nil, c.defect(DefectBadConstraint, "%s must be an integer, got %s", key, t)
		}
		return &i, nil
	default:
		return nil, c.defect(DefectBadConstraint, "%s must be an integer, got %s", key, typeName(raw))
	}
}

func (c *compiler) float64Field(m map[string]any, key string) (*float64, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	switch t := raw.(type) {
	case int:
		v := float64(t)
		return &v, nil
	case int64:
		v := float64(t)
		return &v, nil
	case float64:
		return &t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, c.defect(DefectBadConstraint, "%s must be a number, got %s", key, t)
		}
		return &f, nil
	default:
		return nil, c.defect(DefectBadConstraint, "%s must be a number, got %s", key, typeName(raw))
	}
}

func (c *compiler) lengthBounds(m map[string]any) (minLen, maxLen int, err error) {
	minLen, maxLen = -1, -1
	if p, err := c.int64Field(m, "min_length"); err != nil {
		return 0, 0, err
	} else if p != nil {
		if *p < 0 {
			return 0, 0, c.defect(DefectBadConstraint, "min_length must not be negative, got %d", *p)
		}
		minLen = int(*p)
	}
	if p, err := c.int64Field(m, "max_length"); err != nil {
		return 0, 0, err
	} else if p != nil {
		if *p < 0 {
			return 0, 0, c.defect(DefectBadConstraint, "max_length must not be negative, got %d", *p)
		}
		maxLen = int(*p)
	}
	if minLen >= 0 && maxLen >= 0 && minLen > maxLen {
		return 0, 0, c.defect(DefectBadConstraint, "min_length (%d) exceeds max_length (%d)", minLen, maxLen)
	}
	return minLen, maxLen, nil
}

// normalizeDefault converts a description default into the internal value
// vocabulary and rejects anything the executors could not deep-copy.
func (c *compiler) normalizeDefault(raw any) (any, error) {
	switch t := raw.(type) {
	case nil, bool, int64, float64, string:
		return t, nil
	case int:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case float32:
		return float64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		if f, err := t.Float64(); err == nil {
			return f, nil
		}
		return nil, c.defect(DefectBadDefault, "default number %s is not representable", t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			ev, err := c.normalizeDefault(e)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ev, err := c.normalizeDefault(e)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	default:
		return nil, c.defect(DefectBadDefault, "default value of type %s is outside the value vocabulary", typeName(raw))
	}
}

// normalizeDescScalar widens description scalars read directly (literal
// members) to the internal vocabulary.
func normalizeDescScalar(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		return t
	case float64:
		if i, reason := intFromFloat(t); reason == "" {
			return i
		}
		return t
	default:
		return v
	}
}
