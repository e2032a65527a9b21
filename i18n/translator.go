package i18n

import (
	"fmt"
	"strings"
)

// Translator retrieves localized messages for issue kinds. data provides
// optional parameters to embed in the message (for example, "ge" or
// "expected_tags").
type Translator interface {
	Message(kind string, data map[string]any) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(kind string, data map[string]any) string {
	var tmpl string
	switch t.lang {
	case "ja":
		tmpl = messageJA(kind)
	default:
		tmpl = messageEN(kind)
	}
	if tmpl == "" {
		return kind
	}
	return expand(tmpl, data)
}

func messageEN(kind string) string {
	switch kind {
	case "missing":
		return "Field required"
	case "extra_forbidden":
		return "Extra inputs are not permitted"
	case "none_required":
		return "Input should be null"
	case "bool_type":
		return "Input should be a valid boolean"
	case "bool_parsing":
		return "Input should be a valid boolean, unable to interpret input"
	case "int_type":
		return "Input should be a valid integer"
	case "int_parsing":
		return "Input should be a valid integer, unable to parse input as an integer"
	case "int_from_float":
		return "Input should be a valid integer, got a number with a fractional part"
	case "greater_than":
		return "Input should be greater than {gt}"
	case "greater_than_equal":
		return "Input should be greater than or equal to {ge}"
	case "less_than":
		return "Input should be less than {lt}"
	case "less_than_equal":
		return "Input should be less than or equal to {le}"
	case "multiple_of":
		return "Input should be a multiple of {multiple_of}"
	case "float_type":
		return "Input should be a valid number"
	case "float_parsing":
		return "Input should be a valid number, unable to parse input as a number"
	case "finite_number":
		return "Input should be a finite number"
	case "string_type":
		return "Input should be a valid string"
	case "string_unicode":
		return "Input should be a valid string, unable to parse raw data as a unicode string"
	case "string_too_short":
		return "String should have at least {min_length} characters"
	case "string_too_long":
		return "String should have at most {max_length} characters"
	case "string_pattern_mismatch":
		return "String should match pattern '{pattern}'"
	case "bytes_type":
		return "Input should be a valid byte sequence"
	case "bytes_too_short":
		return "Data should have at least {min_length} bytes"
	case "bytes_too_long":
		return "Data should have at most {max_length} bytes"
	case "literal_error":
		return "Input should be {expected}"
	case "datetime_type":
		return "Input should be a valid datetime"
	case "datetime_parsing":
		return "Input should be a valid datetime, {reason}"
	case "date_type":
		return "Input should be a valid date"
	case "date_parsing":
		return "Input should be a valid date, {reason}"
	case "time_type":
		return "Input should be a valid time"
	case "time_parsing":
		return "Input should be a valid time, {reason}"
	case "duration_type":
		return "Input should be a valid duration"
	case "duration_parsing":
		return "Input should be a valid duration, {reason}"
	case "uuid_type":
		return "Input should be a valid UUID"
	case "uuid_parsing":
		return "Input should be a valid UUID, {reason}"
	case "url_type":
		return "Input should be a valid URL"
	case "url_parsing":
		return "Input should be a valid URL, {reason}"
	case "list_type":
		return "Input should be a valid list"
	case "tuple_type":
		return "Input should be a valid tuple"
	case "set_type":
		return "Input should be a valid set"
	case "set_item_not_hashable":
		return "Set items should be hashable"
	case "dict_type":
		return "Input should be a valid mapping"
	case "model_type":
		return "Input should be a valid mapping"
	case "too_short":
		return "Collection should have at least {min_length} items"
	case "too_long":
		return "Collection should have at most {max_length} items"
	case "union_tag_not_found":
		return "Unable to extract tag using discriminator '{discriminator}'"
	case "union_tag_invalid":
		return "Input tag '{tag}' found using '{discriminator}' does not match any of the expected tags: {expected_tags}"
	case "recursion_too_deep":
		return "Maximum recursion depth exceeded"
	case "definition_not_found":
		return "Unknown definition reference '{ref}'"
	case "circular_reference":
		return "Circular reference detected"
	case "type_unsupported":
		return "Value of type '{actual}' is not supported here"
	case "transform_error":
		return "Transform '{transform}' failed: {error}"
	case "serializer_error":
		return "Field serializer '{serializer}' failed: {error}"
	case "json_invalid":
		return "Invalid JSON: {error}"
	case "duplicate_key":
		return "Duplicate object key '{key}'"
	case "max_depth_exceeded":
		return "Input exceeds the maximum nesting depth"
	case "max_bytes_exceeded":
		return "Input exceeds the configured size limit"
	}
	return ""
}

func messageJA(kind string) string {
	switch kind {
	case "missing":
		return "必須プロパティが不足しています"
	case "extra_forbidden":
		return "未知のキーは許可されていません"
	case "none_required":
		return "null である必要があります"
	case "bool_type":
		return "真偽値である必要があります"
	case "int_type":
		return "整数である必要があります"
	case "int_parsing":
		return "整数として解析できません"
	case "float_type":
		return "数値である必要があります"
	case "string_type":
		return "文字列である必要があります"
	case "string_too_short":
		return "短すぎます"
	case "string_too_long":
		return "長すぎます"
	case "too_short":
		return "要素数が少なすぎます"
	case "too_long":
		return "要素数が多すぎます"
	case "list_type":
		return "リストである必要があります"
	case "dict_type", "model_type":
		return "マッピングである必要があります"
	case "union_tag_not_found":
		return "判別キー '{discriminator}' が見つかりません"
	case "union_tag_invalid":
		return "未知のタグ '{tag}' です"
	case "recursion_too_deep":
		return "再帰の上限を超えました"
	case "circular_reference":
		return "循環参照が検出されました"
	case "duplicate_key":
		return "キーが重複しています"
	case "json_invalid":
		return "不正な JSON です"
	}
	return ""
}

// expand substitutes {name} tokens in tmpl with values from data.
func expand(tmpl string, data map[string]any) string {
	if !strings.Contains(tmpl, "{") || len(data) == 0 {
		return tmpl
	}
	out := tmpl
	for k, v := range data {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given kind using the current Translator.
func T(kind string, data map[string]any) string { return currentTranslator.Message(kind, data) }
