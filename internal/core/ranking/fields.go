package ranking

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// FieldRow is one labelled extracted field for tabular display.
type FieldRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

const emptyValue = "-"

var separatorRun = regexp.MustCompile(`[_-]+`)

// FlattenFields turns an extracted-fields JSON document into rows.
// Nested objects are walked with dotted keys; arrays stay as raw JSON.
// Invalid JSON yields no rows.
func FlattenFields(fieldsJSON string) []FieldRow {
	if !gjson.Valid(fieldsJSON) {
		return nil
	}
	root := gjson.Parse(fieldsJSON)
	switch {
	case root.IsObject():
		return flattenObject(root, "")
	case root.IsArray():
		return []FieldRow{{Key: "list", Label: "List", Value: root.Raw}}
	default:
		return nil
	}
}

func flattenObject(obj gjson.Result, prefix string) []FieldRow {
	var rows []FieldRow
	obj.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		if value.IsObject() {
			rows = append(rows, flattenObject(value, path)...)
		} else {
			rows = append(rows, FieldRow{Key: path, Label: FieldLabel(path), Value: fieldValue(value)})
		}
		return true
	})
	return rows
}

func fieldValue(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return emptyValue
	case gjson.String:
		return v.Str
	case gjson.JSON:
		return v.Raw
	default:
		return v.String()
	}
}

// FieldLabel turns "datos.numero_factura" into "Datos / Numero factura".
func FieldLabel(path string) string {
	parts := strings.Split(path, ".")
	for i, p := range parts {
		p = strings.TrimSpace(separatorRun.ReplaceAllString(p, " "))
		if p != "" {
			r := []rune(p)
			p = strings.ToUpper(string(r[0])) + string(r[1:])
		}
		parts[i] = p
	}
	return strings.Join(parts, " / ")
}

// DocumentType returns the value of the document-type field, if any.
func DocumentType(rows []FieldRow) string {
	for _, row := range rows {
		label := strings.ToLower(row.Key + " " + row.Label)
		if !strings.Contains(label, "tipo_documento") &&
			!strings.Contains(label, "tipo documento") &&
			!strings.Contains(label, "tipo documental") {
			continue
		}
		if v := strings.TrimSpace(row.Value); v != "" && v != emptyValue {
			return v
		}
	}
	return ""
}
