package skemacore

// modelField is one declared record field. When Alias is set it is the
// expected input key and the location segment used in leaves; the output
// key stays Name unless serialization runs with ByAlias.
type modelField struct {
	name       string
	alias      string
	schema     node
	required   bool
	hasDefault bool
	def        any
	serializer FieldSerializerFunc
	serName    string
}

// inputKey is the key the field is read from.
func (f *modelField) inputKey() string {
	if f.alias != "" {
		return f.alias
	}
	return f.name
}

// modelNode validates structured records. Fields are processed in declared
// order; a missing required field yields a missing leaf, an absent field
// with a default is filled from a deep copy without error, and unknown
// keys follow the configured extra policy. Field failures aggregate like
// container elements: every field is attempted, the call fails together.
type modelNode struct {
	fields []modelField
	known  map[string]int // input key (alias when set) -> fields index
	byName map[string]int // field name -> fields index
	extra  ExtraBehavior
}

func (n *modelNode) kind() string { return "model" }

func (n *modelNode) validate(rt *runtime, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, rt.fail(KindModelType, v, nil)
	}
	var iss Issues
	out := make(map[string]any, len(n.fields))
	for i := range n.fields {
		f := &n.fields[i]
		key := f.inputKey()
		if val, exists := m[key]; exists {
			rt.pushField(key)
			fv, err := f.schema.validate(rt, val)
			if err != nil {
				iss = AppendIssues(iss, rt.loc, err)
			} else {
				out[f.name] = fv
			}
			rt.pop()
			continue
		}
		if f.hasDefault {
			out[f.name] = copyGraph(f.def)
			continue
		}
		if f.required {
			rt.pushField(key)
			iss = append(iss, rt.issue(KindMissing, nil, nil))
			rt.pop()
		}
	}
	switch n.extra {
	case ExtraIgnore:
	case ExtraForbid:
		for _, k := range sortedKeys(m) {
			if _, known := n.known[k]; known {
				continue
			}
			rt.pushField(k)
			iss = append(iss, rt.issue(KindExtraForbidden, m[k], nil))
			rt.pop()
		}
	case ExtraAllow:
		for k, val := range m {
			if _, known := n.known[k]; known {
				continue
			}
			// A raw key colliding with a declared field name must not
			// clobber that field's validated value.
			if _, named := n.byName[k]; named {
				continue
			}
			out[k] = copyGraph(val)
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

func (n *modelNode) serialize(rt *runtime, v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return rt.mismatchValue(n, v)
	}
	id, tracked, cyclic := rt.beginCycleCheck(m)
	if cyclic {
		return nil, rt.fail(KindCircularReference, nil, nil)
	}
	defer rt.endCycleCheck(id, tracked)

	include, exclude := rt.include, rt.exclude
	var iss Issues
	out := make(map[string]any, len(n.fields))
	for i := range n.fields {
		f := &n.fields[i]
		val, present := m[f.name]
		if !present {
			continue
		}
		subInc, incListed := include.sub(f.name)
		if include != nil && !incListed {
			continue
		}
		subExc, excListed := exclude.sub(f.name)
		if excListed && subExc == nil {
			continue
		}
		if rt.omitDefaults && f.hasDefault && looseEqual(val, f.def) {
			continue
		}
		outKey := f.name
		if rt.byAlias && f.alias != "" {
			outKey = f.alias
		}
		rt.pushField(outKey)
		rt.include, rt.exclude = subInc, subExc
		var fv any
		var err error
		if f.serializer != nil {
			fv, err = f.serializer(rt.ctx, val, rt.target)
			if err != nil {
				err = rt.fail(KindSerializerError, val, map[string]any{"serializer": f.serName, "error": err.Error()})
			}
		} else {
			fv, err = f.schema.serialize(rt, val)
		}
		rt.include, rt.exclude = include, exclude
		if err != nil {
			iss = AppendIssues(iss, rt.loc, err)
		} else {
			out[outKey] = fv
		}
		rt.pop()
	}
	if n.extra == ExtraAllow {
		for _, k := range sortedKeys(m) {
			if _, known := n.byName[k]; known {
				continue
			}
			if _, emitted := out[k]; emitted {
				continue
			}
			if include != nil {
				if _, listed := include.sub(k); !listed {
					continue
				}
			}
			if sub, listed := exclude.sub(k); listed && sub == nil {
				continue
			}
			rt.pushField(k)
			ev, err := rt.encodeAny(m[k])
			if err != nil {
				iss = AppendIssues(iss, rt.loc, err)
			} else {
				out[k] = ev
			}
			rt.pop()
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}
